package app

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/debemdeboas/markpad/internal/clipboard"
	"github.com/debemdeboas/markpad/internal/clipimage"
	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/dialog"
	"github.com/debemdeboas/markpad/internal/document"
	"github.com/debemdeboas/markpad/internal/edit"
)

// Command is one entry of the command surface.
type Command struct {
	ID    string
	Title string
	Keys  []string
	Run   func(m *Model) tea.Cmd
	// CanExecute is evaluated on every query. Nil means always enabled.
	CanExecute func(m *Model) bool
}

func (c Command) Enabled(m *Model) bool {
	return c.CanExecute == nil || c.CanExecute(m)
}

// Registry indexes commands by id and key.
type Registry struct {
	cmds  []Command
	byID  map[string]int
	byKey map[string]int
}

func NewRegistry(cmds []Command) *Registry {
	r := &Registry{
		cmds:  cmds,
		byID:  make(map[string]int, len(cmds)),
		byKey: make(map[string]int),
	}
	for i, c := range cmds {
		r.byID[c.ID] = i
		for _, k := range c.Keys {
			r.byKey[k] = i
		}
	}
	return r
}

func (r *Registry) Lookup(id string) (Command, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Command{}, false
	}
	return r.cmds[i], true
}

func (r *Registry) ForKey(key string) (Command, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Command{}, false
	}
	return r.cmds[i], true
}

func (r *Registry) Commands() []Command {
	return r.cmds
}

func hasSelection(m *Model) bool {
	return !m.doc.Selection().Empty()
}

// snippetKeys binds the markdown snippets. Terminals send ctrl+i as tab, so
// italic is also on alt+i.
var snippetKeys = map[string][]string{
	edit.Heading1.ID:     {"alt+1"},
	edit.Heading2.ID:     {"alt+2"},
	edit.Heading3.ID:     {"alt+3"},
	edit.Bold.ID:         {"ctrl+b"},
	edit.Italic.ID:       {"ctrl+i", "alt+i"},
	edit.CodeBlock.ID:    {"alt+c"},
	edit.BulletList.ID:   {"alt+l"},
	edit.NumberedList.ID: {"alt+n"},
}

// DefaultCommands lists every command in menu order.
func DefaultCommands() []Command {
	cmds := []Command{
		{ID: "new", Title: "New", Keys: []string{"ctrl+n"}, Run: (*Model).cmdNew},
		{ID: "open", Title: "Open", Keys: []string{"ctrl+o"}, Run: (*Model).cmdOpen},
		{ID: "save", Title: "Save", Keys: []string{"ctrl+s"}, Run: (*Model).cmdSave},
		// ctrl+shift+s is indistinguishable from ctrl+s in most terminals.
		{ID: "save-as", Title: "Save As", Keys: []string{"ctrl+shift+s", "f12"}, Run: (*Model).cmdSaveAs},
		{ID: "exit", Title: "Exit", Keys: []string{"ctrl+q"}, Run: (*Model).cmdExit},

		{ID: "undo", Title: "Undo", Keys: []string{"ctrl+z"}, Run: (*Model).cmdUndo,
			CanExecute: func(m *Model) bool { return m.doc.CanUndo() }},
		{ID: "redo", Title: "Redo", Keys: []string{"ctrl+y"}, Run: (*Model).cmdRedo,
			CanExecute: func(m *Model) bool { return m.doc.CanRedo() }},
		{ID: "cut", Title: "Cut", Keys: []string{"ctrl+x"}, Run: (*Model).cmdCut, CanExecute: hasSelection},
		{ID: "copy", Title: "Copy", Keys: []string{"ctrl+c"}, Run: (*Model).cmdCopy, CanExecute: hasSelection},
		{ID: "paste", Title: "Paste", Keys: []string{"ctrl+v"}, Run: (*Model).cmdPaste,
			CanExecute: func(m *Model) bool { return m.clip != nil && m.clip.HasContent() }},
		{ID: "select-all", Title: "Select All", Keys: []string{"ctrl+a"}, Run: (*Model).cmdSelectAll},

		{ID: "find", Title: "Find", Keys: []string{"ctrl+f"}, Run: func(m *Model) tea.Cmd { return m.cmdFind(false) }},
		{ID: "replace", Title: "Replace", Keys: []string{"ctrl+h"}, Run: func(m *Model) tea.Cmd { return m.cmdFind(true) }},
		{ID: "insert-image", Title: "Insert Image", Keys: []string{"ctrl+g"}, Run: (*Model).cmdInsertImage},
		{ID: "insert-link", Title: "Insert Link", Keys: []string{"ctrl+k"}, Run: (*Model).cmdInsertLink},
	}

	for _, s := range edit.Snippets {
		cmds = append(cmds, Command{
			ID:    s.ID,
			Title: s.Title,
			Keys:  snippetKeys[s.ID],
			Run: func(m *Model) tea.Cmd {
				s.Run(m.doc)
				return nil
			},
		})
	}

	return append(cmds,
		Command{ID: "toggle-preview", Title: "Toggle Preview", Keys: []string{"ctrl+p"}, Run: (*Model).cmdTogglePreview},
		Command{ID: "guide", Title: "Markdown Guide", Keys: []string{"f1"}, Run: (*Model).cmdGuide},
		Command{ID: "about", Title: "About", Keys: []string{"f2"}, Run: (*Model).cmdAbout},
	)
}

// Execute runs the command id if it exists and is enabled.
func (m *Model) Execute(id string) tea.Cmd {
	c, ok := m.commands.Lookup(id)
	if !ok || !c.Enabled(m) {
		return nil
	}
	m.pane.reset()
	return c.Run(m)
}

// CanExecute reports whether command id is currently enabled.
func (m *Model) CanExecute(id string) bool {
	c, ok := m.commands.Lookup(id)
	return ok && c.Enabled(m)
}

// guard runs action once unsaved changes have been dealt with. Yes saves
// first and proceeds only if the save succeeded, No discards the changes,
// Cancel aborts.
func (m *Model) guard(action func() tea.Cmd) tea.Cmd {
	if !m.doc.IsModified() {
		return action()
	}

	m.openModal(newConfirm(config.AppName, fmt.Sprintf(config.MsgSaveChanges, m.doc.Name()), func(choice dialog.Choice) tea.Cmd {
		if choice == dialog.ChoiceYes && m.doc.Path() == "" {
			return m.saveAs(action)
		}
		if !dialog.Gate(m.doc.IsModified(), choice, func() bool { return m.saveTo("") }) {
			return nil
		}
		if choice == dialog.ChoiceNo {
			m.discardDraft()
		}
		return action()
	}))
	return nil
}

func (m *Model) cmdNew() tea.Cmd {
	return m.guard(func() tea.Cmd {
		m.doc.Reset()
		return m.documentChanged()
	})
}

func (m *Model) cmdOpen() tea.Cmd {
	return m.guard(func() tea.Cmd {
		value := ""
		if dir := m.doc.Dir(); dir != "" {
			value = dir + string(filepath.Separator)
		}
		m.openModal(newPrompt("Open", value, func(r dialog.Result[string]) tea.Cmd {
			if !r.Confirmed {
				return nil
			}
			return m.openFile(r.Payload)
		}))
		return nil
	})
}

// openFile loads path. On failure the current document stays.
func (m *Model) openFile(path string) tea.Cmd {
	if err := m.doc.Load(path); err != nil {
		m.showError("Open", fmt.Sprintf(config.ErrOpenFileFmt, err))
		return nil
	}
	m.notice(fmt.Sprintf(config.MsgOpenedFmt, m.doc.Name()))
	return m.documentChanged()
}

func (m *Model) cmdSave() tea.Cmd {
	return m.save(nil)
}

func (m *Model) cmdSaveAs() tea.Cmd {
	return m.saveAs(nil)
}

// save writes to the current path, asking for one when there is none. then
// runs only after a successful save.
func (m *Model) save(then func() tea.Cmd) tea.Cmd {
	if m.doc.Path() == "" {
		return m.saveAs(then)
	}
	if !m.saveTo("") || then == nil {
		return nil
	}
	return then()
}

func (m *Model) saveAs(then func() tea.Cmd) tea.Cmd {
	value := m.doc.Path()
	if value == "" {
		value = filepath.Join(m.doc.Dir(), "untitled.md")
	}
	m.openModal(newPrompt("Save as", value, func(r dialog.Result[string]) tea.Cmd {
		if !r.Confirmed {
			return nil
		}
		if !m.saveTo(r.Payload) {
			return nil
		}
		cmd := m.documentChanged()
		if then != nil {
			cmd = tea.Batch(cmd, then())
		}
		return cmd
	}))
	return nil
}

// saveTo writes the document and reports whether it succeeded. The draft
// of the saved state is no longer needed.
func (m *Model) saveTo(path string) bool {
	if err := m.doc.Save(path); err != nil {
		m.showError("Save", fmt.Sprintf(config.ErrSaveFileFmt, err))
		return false
	}

	m.discardDraft()
	if m.watcher != nil {
		m.watcher.Acknowledge([]byte(m.doc.Text()))
	}
	m.notice(fmt.Sprintf(config.MsgSavedFmt, m.doc.Name()))
	return true
}

func (m *Model) cmdExit() tea.Cmd {
	return m.guard(m.quit)
}

func (m *Model) cmdUndo() tea.Cmd {
	m.doc.Undo()
	return nil
}

func (m *Model) cmdRedo() tea.Cmd {
	m.doc.Redo()
	return nil
}

func (m *Model) cmdCut() tea.Cmd {
	if err := m.clip.WriteText(m.doc.SelectedText()); err != nil {
		m.fail(fmt.Sprintf(config.ErrClipboardFmt, err))
		return nil
	}
	m.doc.DeleteBackward()
	return nil
}

func (m *Model) cmdCopy() tea.Cmd {
	if err := m.clip.WriteText(m.doc.SelectedText()); err != nil {
		m.fail(fmt.Sprintf(config.ErrClipboardFmt, err))
	}
	return nil
}

// cmdPaste inserts whatever the clipboard holds. Bitmaps are saved next to
// the document first.
func (m *Model) cmdPaste() tea.Cmd {
	content, err := m.clip.Read()
	if errors.Is(err, clipboard.ErrEmpty) {
		return nil
	}
	if err != nil {
		m.fail(fmt.Sprintf(config.ErrClipboardFmt, err))
		return nil
	}

	out, err := m.ingest.Paste(m.doc, content)
	if err != nil {
		m.fail(fmt.Sprintf(config.ErrPasteImageFm, err))
		return nil
	}
	if out.Saved != "" {
		m.notice(fmt.Sprintf(config.MsgImageSavedFm, filepath.Base(out.Saved)))
	}
	return nil
}

func (m *Model) cmdSelectAll() tea.Cmd {
	m.doc.SelectAll()
	return nil
}

func (m *Model) cmdFind(replace bool) tea.Cmd {
	initial := ""
	if sel := m.doc.SelectedText(); sel != "" && !containsNewline(sel) {
		initial = sel
	}
	m.openModal(newFindModal(m.doc, initial, replace))
	return nil
}

func containsNewline(s string) bool {
	for _, r := range s {
		if r == '\n' {
			return true
		}
	}
	return false
}

func (m *Model) cmdInsertImage() tea.Cmd {
	m.openModal(newPrompt("Insert image", "", func(r dialog.Result[string]) tea.Cmd {
		if !r.Confirmed {
			return nil
		}
		if !clipimage.IsImageFile(r.Payload) {
			m.fail(fmt.Sprintf(config.ErrNotImageFmt, r.Payload))
			return nil
		}
		edit.Apply(m.doc, edit.InsertImage(m.doc.Text(), m.doc.Selection(), m.doc.Path(), r.Payload))
		return nil
	}))
	return nil
}

func (m *Model) cmdInsertLink() tea.Cmd {
	m.openModal(newLinkModal(m.doc.SelectedText(), func(r dialog.Result[edit.Link]) tea.Cmd {
		if !r.Confirmed {
			return nil
		}
		res, err := edit.InsertLink(m.doc.Text(), m.doc.Selection(), r.Payload)
		if err != nil {
			m.fail(config.ErrURLRequired)
			return nil
		}
		edit.Apply(m.doc, res)
		return nil
	}))
	return nil
}

func (m *Model) cmdTogglePreview() tea.Cmd {
	visible := !m.sched.Visible()
	m.sched.SetVisible(visible)
	if visible {
		m.notice("Preview on")
	} else {
		m.notice("Preview off")
	}
	return nil
}

// cmdGuide replaces the buffer with the markdown guide as one undoable step.
func (m *Model) cmdGuide() tea.Cmd {
	m.doc.Apply(markdownGuide, document.Caret(0))
	m.doc.MarkModified()
	m.notice("Markdown guide loaded")
	return nil
}

func (m *Model) cmdAbout() tea.Cmd {
	m.openModal(&messageModal{title: "About " + config.AppName, body: aboutText})
	return nil
}
