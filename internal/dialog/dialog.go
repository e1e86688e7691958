// Package dialog models modal prompts as values: a dialog either confirms
// with a payload or is cancelled.
package dialog

// Result is the outcome of a modal dialog.
type Result[T any] struct {
	Confirmed bool
	Payload   T
}

func Confirm[T any](payload T) Result[T] {
	return Result[T]{Confirmed: true, Payload: payload}
}

func Cancel[T any]() Result[T] {
	return Result[T]{}
}

// Choice is the answer to the save-changes prompt.
type Choice int

const (
	ChoiceCancel Choice = iota
	ChoiceYes
	ChoiceNo
)

func (c Choice) String() string {
	switch c {
	case ChoiceYes:
		return "yes"
	case ChoiceNo:
		return "no"
	default:
		return "cancel"
	}
}

// Gate runs the save-changes protocol before a destructive action. When the
// document is unmodified it proceeds without asking. On Yes it proceeds
// only if save reports success.
func Gate(modified bool, choice Choice, save func() bool) bool {
	if !modified {
		return true
	}
	switch choice {
	case ChoiceYes:
		return save()
	case ChoiceNo:
		return true
	default:
		return false
	}
}
