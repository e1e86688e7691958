package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/dialog"
	"github.com/debemdeboas/markpad/internal/edit"
	"github.com/debemdeboas/markpad/internal/find"
)

// modal owns the keyboard while it is open. A modal closes itself through
// Model.closeModal before running its callback, so the callback may open
// the next one.
type modal interface {
	update(m *Model, msg tea.KeyMsg) tea.Cmd
	view(width int) string
}

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	modalTitleStyle = lipgloss.NewStyle().Bold(true)
	modalHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modalErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func modalWidth(width int) int {
	return max(min(width-4, 64), 20)
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Width = 48
	ti.SetValue(value)
	return ti
}

func renderModal(width int, parts ...string) string {
	var lines []string
	for _, p := range parts {
		if p != "" {
			lines = append(lines, p)
		}
	}
	return modalStyle.Width(modalWidth(width)).Render(strings.Join(lines, "\n"))
}

// expandHome resolves a leading ~ in a typed path.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// promptModal asks for a single path.
type promptModal struct {
	title string
	input textinput.Model
	err   string
	done  func(dialog.Result[string]) tea.Cmd
}

func newPrompt(title, value string, done func(dialog.Result[string]) tea.Cmd) *promptModal {
	p := &promptModal{
		title: title,
		input: newInput("path/to/file.md", value),
		done:  done,
	}
	p.input.Focus()
	return p
}

func (p *promptModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeModal()
		return p.done(dialog.Cancel[string]())
	case tea.KeyEnter:
		path := strings.TrimSpace(p.input.Value())
		if path == "" {
			p.err = config.ErrNoPathGiven
			return nil
		}
		m.closeModal()
		return p.done(dialog.Confirm(expandHome(path)))
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.err = ""
	return cmd
}

func (p *promptModal) view(width int) string {
	return renderModal(width,
		modalTitleStyle.Render(p.title),
		p.input.View(),
		modalErrStyle.Render(p.err),
		modalHintStyle.Render("enter confirm · esc cancel"),
	)
}

// linkModal collects the text and URL of a link. A blank URL keeps the
// dialog open.
type linkModal struct {
	text  textinput.Model
	url   textinput.Model
	focus int
	err   string
	done  func(dialog.Result[edit.Link]) tea.Cmd
}

func newLinkModal(selected string, done func(dialog.Result[edit.Link]) tea.Cmd) *linkModal {
	l := &linkModal{
		text: newInput("link text", selected),
		url:  newInput("https://", ""),
		done: done,
	}
	if selected != "" {
		l.focus = 1
		l.url.Focus()
	} else {
		l.text.Focus()
	}
	return l
}

func (l *linkModal) setFocus(i int) {
	l.focus = i
	if i == 0 {
		l.url.Blur()
		l.text.Focus()
	} else {
		l.text.Blur()
		l.url.Focus()
	}
}

func (l *linkModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeModal()
		return l.done(dialog.Cancel[edit.Link]())
	case tea.KeyTab, tea.KeyShiftTab:
		l.setFocus(1 - l.focus)
		return nil
	case tea.KeyEnter:
		if l.focus == 0 {
			l.setFocus(1)
			return nil
		}
		link := edit.Link{Text: l.text.Value(), URL: strings.TrimSpace(l.url.Value())}
		if err := link.Validate(); err != nil {
			l.err = config.ErrURLRequired
			return nil
		}
		m.closeModal()
		return l.done(dialog.Confirm(link))
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.text, cmd = l.text.Update(msg)
	} else {
		l.url, cmd = l.url.Update(msg)
	}
	l.err = ""
	return cmd
}

func (l *linkModal) view(width int) string {
	return renderModal(width,
		modalTitleStyle.Render("Insert link"),
		"Text: "+l.text.View(),
		"URL:  "+l.url.View(),
		modalErrStyle.Render(l.err),
		modalHintStyle.Render("tab switch field · enter insert · esc cancel"),
	)
}

// findModal drives one find.Session. The session lives as long as the
// dialog, so the last match is remembered between searches.
type findModal struct {
	session *find.Session
	find    textinput.Model
	replace textinput.Model
	focus   int
	status  string
}

func newFindModal(target find.Target, initial string, focusReplace bool) *findModal {
	f := &findModal{
		session: find.NewSession(target),
		find:    newInput("find", initial),
		replace: newInput("replace with", ""),
	}
	if focusReplace && initial != "" {
		f.focus = 1
		f.replace.Focus()
	} else {
		f.find.Focus()
	}
	return f
}

func (f *findModal) sync() {
	f.session.Find = f.find.Value()
	f.session.Replace = f.replace.Value()
}

func (f *findModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return nil
	case "tab", "shift+tab":
		f.focus = 1 - f.focus
		if f.focus == 0 {
			f.replace.Blur()
			f.find.Focus()
		} else {
			f.find.Blur()
			f.replace.Focus()
		}
		return nil
	case "enter":
		f.run(m, func() (string, error) {
			_, err := f.session.FindNext()
			return "", err
		})
		return nil
	case "ctrl+r":
		f.run(m, func() (string, error) {
			_, _, err := f.session.ReplaceNext()
			return "", err
		})
		return nil
	case "ctrl+a":
		f.run(m, func() (string, error) {
			n, err := f.session.ReplaceAll()
			return fmt.Sprintf(config.MsgReplacedFmt, n), err
		})
		return nil
	case "alt+c":
		f.session.CaseSensitive = !f.session.CaseSensitive
		return nil
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.find, cmd = f.find.Update(msg)
	} else {
		f.replace, cmd = f.replace.Update(msg)
	}
	return cmd
}

func (f *findModal) run(m *Model, op func() (string, error)) {
	f.sync()
	status, err := op()
	m.pane.reset()

	switch {
	case errors.Is(err, find.ErrEmptyFind):
		f.status = ""
	case errors.Is(err, find.ErrNotFound):
		f.status = config.MsgNotFound
	default:
		f.status = status
	}
}

func (f *findModal) view(width int) string {
	matchCase := "[ ] match case"
	if f.session.CaseSensitive {
		matchCase = "[x] match case"
	}
	return renderModal(width,
		modalTitleStyle.Render("Find and replace"),
		"Find:    "+f.find.View(),
		"Replace: "+f.replace.View(),
		matchCase,
		modalErrStyle.Render(f.status),
		modalHintStyle.Render("enter next · ctrl+r replace · ctrl+a replace all · alt+c case · esc close"),
	)
}

// confirmModal is the save-changes prompt.
type confirmModal struct {
	title    string
	question string
	done     func(dialog.Choice) tea.Cmd
}

func newConfirm(title, question string, done func(dialog.Choice) tea.Cmd) *confirmModal {
	return &confirmModal{title: title, question: question, done: done}
}

func (c *confirmModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	var choice dialog.Choice
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		choice = dialog.ChoiceYes
	case "n":
		choice = dialog.ChoiceNo
	case "c", "esc":
		choice = dialog.ChoiceCancel
	default:
		return nil
	}
	m.closeModal()
	return c.done(choice)
}

func (c *confirmModal) view(width int) string {
	return renderModal(width,
		modalTitleStyle.Render(c.title),
		c.question,
		modalHintStyle.Render("[y]es · [n]o · [c]ancel"),
	)
}

// messageModal shows information or an error until dismissed.
type messageModal struct {
	title string
	body  string
	isErr bool
}

func (mm *messageModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", "q", " ":
		m.closeModal()
	}
	return nil
}

func (mm *messageModal) view(width int) string {
	title := modalTitleStyle.Render(mm.title)
	if mm.isErr {
		title = modalErrStyle.Bold(true).Render(mm.title)
	}
	return renderModal(width,
		title,
		mm.body,
		modalHintStyle.Render("enter close"),
	)
}
