package document

// maxHistory bounds the undo stack; the oldest steps are dropped first.
const maxHistory = 500

type snapshot struct {
	text []rune
	sel  Selection
}

type history struct {
	undo []snapshot
	redo []snapshot

	// typing is set while single runes are being typed at caret.
	typing bool
	caret  int
}

func (h *history) push(s snapshot) {
	h.undo = append(h.undo, s)
	if len(h.undo) > maxHistory {
		h.undo = h.undo[len(h.undo)-maxHistory:]
	}
	h.redo = nil
	h.typing = false
}

func (h *history) continues(at int) bool {
	return h.typing && h.caret == at && len(h.undo) > 0
}

func (h *history) typingAt(caret int) {
	h.typing = true
	h.caret = caret
}

func (h *history) breakTyping() {
	h.typing = false
}

func (h *history) popUndo(current snapshot) (snapshot, bool) {
	if len(h.undo) == 0 {
		return snapshot{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	h.typing = false
	return prev, true
}

func (h *history) popRedo(current snapshot) (snapshot, bool) {
	if len(h.redo) == 0 {
		return snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	h.typing = false
	return next, true
}
