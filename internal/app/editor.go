package app

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/debemdeboas/markpad/internal/document"
)

// row is one visual line of the editor: the runes [start, end) of a logical
// line. Soft wrapping splits a logical line into several rows.
type row struct {
	line  int
	start int
	end   int
	first bool
}

func cellWidth(r rune, col, tabWidth int) int {
	if r == '\t' {
		return tabWidth - col%tabWidth
	}
	return runewidth.RuneWidth(r)
}

// layout splits text into rows no wider than width cells. Without wrap
// every logical line is a single row.
func layout(text []rune, width, tabWidth int, wrap bool) []row {
	var rows []row
	line, ls := 0, 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		rows = appendLine(rows, text, line, ls, i, width, tabWidth, wrap)
		line++
		ls = i + 1
	}
	return rows
}

func appendLine(rows []row, text []rune, line, ls, le, width, tabWidth int, wrap bool) []row {
	if !wrap || width <= 0 {
		return append(rows, row{line: line, start: ls, end: le, first: true})
	}

	start, col := ls, 0
	for i := ls; i < le; i++ {
		w := cellWidth(text[i], col, tabWidth)
		if col+w > width && i > start {
			rows = append(rows, row{line: line, start: start, end: i, first: start == ls})
			start, col = i, 0
			w = cellWidth(text[i], col, tabWidth)
		}
		col += w
	}
	return append(rows, row{line: line, start: start, end: le, first: start == ls})
}

// rowOf returns the index of the row holding offset. An offset on a wrap
// boundary belongs to the row it starts.
func rowOf(rows []row, offset int) int {
	i := sort.Search(len(rows), func(i int) bool { return rows[i].start > offset })
	if i == 0 {
		return 0
	}
	return i - 1
}

// colOf is the cell column of offset within r.
func colOf(text []rune, r row, offset, tabWidth int) int {
	col := 0
	for i := r.start; i < offset && i < r.end; i++ {
		col += cellWidth(text[i], col, tabWidth)
	}
	return col
}

// offsetAt is the offset in r closest to cell column col.
func offsetAt(text []rune, r row, col, tabWidth int) int {
	c := 0
	for i := r.start; i < r.end; i++ {
		w := cellWidth(text[i], c, tabWidth)
		if c+w > col {
			return i
		}
		c += w
	}
	return r.end
}

var (
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	caretStyle    = lipgloss.NewStyle().Reverse(true)
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// pane is the scroll, caret and selection state of the text view.
type pane struct {
	top  int
	left int

	// goal is the column vertical moves aim for, -1 when unset.
	goal int
	// anchor is the fixed end of a shift selection, -1 when none.
	anchor int
	head   int

	width  int
	height int
}

func newPane() pane {
	return pane{goal: -1, anchor: -1}
}

// reset forgets the selection anchor and the vertical goal column.
func (p *pane) reset() {
	p.goal = -1
	p.anchor = -1
}

// caret is the moving end of the selection.
func (p *pane) caret(d *document.Document) int {
	if p.anchor >= 0 {
		return p.head
	}
	return d.Selection().End()
}

// moveTo places the caret at offset, extending the selection from its
// anchor when extend is set.
func (p *pane) moveTo(d *document.Document, offset int, extend bool) {
	if !extend {
		p.anchor = -1
		d.SetSelection(document.Caret(offset))
		return
	}
	if p.anchor < 0 {
		sel := d.Selection()
		p.anchor = sel.Start
		if p.caret(d) == sel.Start {
			p.anchor = sel.End()
		}
	}
	p.head = offset
	lo, hi := min(p.anchor, offset), max(p.anchor, offset)
	d.SetSelection(document.Selection{Start: lo, Length: hi - lo})
}

func lineStart(text []rune, offset int) int {
	for offset > 0 && text[offset-1] != '\n' {
		offset--
	}
	return offset
}

func lineEnd(text []rune, offset int) int {
	for offset < len(text) && text[offset] != '\n' {
		offset++
	}
	return offset
}

// textWidth is the number of cells left for text after the gutter.
func (m *Model) textWidth(text []rune) int {
	w := m.pane.width - m.gutterWidth(text)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) gutterWidth(text []rune) int {
	if !m.cfg.Editor.LineNumbers {
		return 0
	}
	lines := strings.Count(string(text), "\n") + 1
	return len(fmt.Sprint(lines)) + 1
}

func (m *Model) rows(text []rune) []row {
	return layout(text, m.textWidth(text), m.cfg.Editor.TabWidth, m.cfg.Editor.WordWrap)
}

// navigate handles caret movement keys. It reports whether key was one.
func (m *Model) navigate(key string) bool {
	extend := strings.HasPrefix(key, "shift+")
	key = strings.TrimPrefix(key, "shift+")

	d := m.doc
	text := []rune(d.Text())
	caret := m.pane.caret(d)
	sel := d.Selection()
	tab := m.cfg.Editor.TabWidth

	vertical := func(delta int) int {
		rows := m.rows(text)
		i := rowOf(rows, caret)
		if m.pane.goal < 0 {
			m.pane.goal = colOf(text, rows[i], caret, tab)
		}
		j := min(max(i+delta, 0), len(rows)-1)
		if j == i {
			if delta < 0 {
				return 0
			}
			return len(text)
		}
		return offsetAt(text, rows[j], m.pane.goal, tab)
	}

	var to int
	keepGoal := false
	switch key {
	case "left":
		if !extend && !sel.Empty() {
			to = sel.Start
		} else {
			to = max(caret-1, 0)
		}
	case "right":
		if !extend && !sel.Empty() {
			to = sel.End()
		} else {
			to = min(caret+1, len(text))
		}
	case "up":
		to, keepGoal = vertical(-1), true
	case "down":
		to, keepGoal = vertical(1), true
	case "pgup":
		to, keepGoal = vertical(-max(m.pane.height-1, 1)), true
	case "pgdown":
		to, keepGoal = vertical(max(m.pane.height-1, 1)), true
	case "home":
		to = lineStart(text, caret)
	case "end":
		to = lineEnd(text, caret)
	case "ctrl+home":
		to = 0
	case "ctrl+end":
		to = len(text)
	default:
		return false
	}

	goal := m.pane.goal
	m.pane.moveTo(d, to, extend)
	if keepGoal {
		m.pane.goal = goal
	} else {
		m.pane.goal = -1
	}
	return true
}

// handleEditKey applies a key that is not bound to a command.
func (m *Model) handleEditKey(msg tea.KeyMsg) {
	if m.navigate(msg.String()) {
		return
	}

	switch msg.Type {
	case tea.KeyEnter:
		m.doc.InsertText("\n")
	case tea.KeyTab:
		m.doc.InsertText("\t")
	case tea.KeyBackspace:
		m.doc.DeleteBackward()
	case tea.KeyDelete:
		m.doc.DeleteForward()
	case tea.KeySpace:
		m.doc.InsertText(" ")
	case tea.KeyEsc:
		m.pane.moveTo(m.doc, m.pane.caret(m.doc), false)
	case tea.KeyRunes:
		if msg.Alt {
			return
		}
		m.doc.InsertText(string(msg.Runes))
	default:
		return
	}
	m.pane.reset()
}

// scrollTo keeps the caret row and column inside the pane.
func (m *Model) scrollTo(text []rune, rows []row, caret int) {
	p := &m.pane
	i := rowOf(rows, caret)
	if i < p.top {
		p.top = i
	}
	if p.height > 0 && i >= p.top+p.height {
		p.top = i - p.height + 1
	}
	if p.top > len(rows)-1 {
		p.top = max(len(rows)-1, 0)
	}

	if m.cfg.Editor.WordWrap {
		p.left = 0
		return
	}
	width := m.textWidth(text)
	col := colOf(text, rows[i], caret, m.cfg.Editor.TabWidth)
	if col < p.left {
		p.left = col
	}
	if col >= p.left+width {
		p.left = col - width + 1
	}
}

// viewEditor draws the visible rows with the gutter, selection and caret.
func (m *Model) viewEditor() string {
	d := m.doc
	text := []rune(d.Text())
	rows := m.rows(text)
	caret := m.pane.caret(d)
	m.scrollTo(text, rows, caret)

	sel := d.Selection()
	tab := m.cfg.Editor.TabWidth
	gutter := m.gutterWidth(text)
	width := m.textWidth(text)
	caretRow := rowOf(rows, caret)

	lines := make([]string, 0, m.pane.height)
	for i := m.pane.top; i < len(rows) && len(lines) < m.pane.height; i++ {
		r := rows[i]
		var b strings.Builder

		if gutter > 0 {
			num := ""
			if r.first {
				num = fmt.Sprint(r.line + 1)
			}
			b.WriteString(gutterStyle.Render(fmt.Sprintf("%*s ", gutter-1, num)))
		}

		col := 0
		for j := r.start; j <= r.end; j++ {
			var cell string
			w := 1
			if j < r.end {
				w = cellWidth(text[j], col, tab)
				cell = string(text[j])
				if text[j] == '\t' {
					cell = strings.Repeat(" ", w)
				}
			} else if j != caret || i != caretRow {
				break
			} else {
				cell = " "
			}

			if col >= m.pane.left && col+w <= m.pane.left+width {
				switch {
				case j == caret && i == caretRow && sel.Empty():
					cell = caretStyle.Render(cell)
				case j >= sel.Start && j < sel.End():
					cell = selectedStyle.Render(cell)
				}
				b.WriteString(cell)
			}
			col += w
		}
		lines = append(lines, b.String())
	}

	for len(lines) < m.pane.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
