package app

import (
	"errors"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/debemdeboas/markpad/internal/watch"
)

// DefaultToastDuration is how long a status message stays visible.
const DefaultToastDuration = 3 * time.Second

var ErrNoProgram = errors.New("program not running")

// Message types for tea.Cmd
type (
	// tickMsg is sent on each clock tick.
	tickMsg time.Time

	// ToastMsg displays a temporary message in the status bar.
	ToastMsg struct {
		Message  string
		Duration time.Duration
		IsError  bool
	}

	// runMsg carries work posted from another goroutine. It runs inside Update,
	// which owns the document.
	runMsg func()

	// fileEventMsg is an external change to the open file.
	fileEventMsg struct {
		w  *watch.Watcher
		ev watch.Event
	}
)

// tickCmd returns a command that ticks every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ShowToast returns a command to show a toast message.
func ShowToast(msg string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  msg,
			Duration: duration,
		}
	}
}

// waitForFileEvent blocks on the watcher and hands the next event to Update.
// A closed watcher ends the chain.
func waitForFileEvent(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return fileEventMsg{w: w, ev: ev}
	}
}

// ProgramPoster posts work onto a running tea.Program. The program is set
// after it has been created, so early posts fail with ErrNoProgram.
type ProgramPoster struct {
	p atomic.Pointer[tea.Program]
}

func (pp *ProgramPoster) Set(p *tea.Program) {
	pp.p.Store(p)
}

func (pp *ProgramPoster) Post(fn func()) error {
	p := pp.p.Load()
	if p == nil {
		return ErrNoProgram
	}
	p.Send(runMsg(fn))
	return nil
}
