package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
	statusNameStyle = statusBarStyle.Bold(true)
	statusInfoStyle = statusBarStyle.Foreground(lipgloss.Color("245"))
	toastStyle      = statusBarStyle.Foreground(lipgloss.Color("42"))
	toastErrStyle   = statusBarStyle.Foreground(lipgloss.Color("196"))
)

// title is the document name with a * while it has unsaved changes.
func (m *Model) title() string {
	name := m.doc.Name()
	if m.doc.IsModified() {
		name += " *"
	}
	return name
}

func (m *Model) viewStatus() string {
	line, col := m.doc.CursorPosition()

	left := statusNameStyle.Render(" "+m.title()) +
		statusInfoStyle.Render(fmt.Sprintf("  Ln %d, Col %d  %d chars  %s", line, col, m.doc.Len(), m.doc.Encoding()))

	var right string
	switch {
	case m.statusMsg != "" && m.statusIsError:
		right = toastErrStyle.Render(m.statusMsg + " ")
	case m.statusMsg != "":
		right = toastStyle.Render(m.statusMsg + " ")
	case m.previewURL != "" && m.sched.Visible():
		right = statusInfoStyle.Render(m.previewURL + " ")
	case m.previewURL != "":
		right = statusInfoStyle.Render("preview off ")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(left + statusBarStyle.Render(" ") + right)
	}
	return left + statusBarStyle.Render(strings.Repeat(" ", gap)) + right
}
