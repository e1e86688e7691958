// Package find implements the find/replace session used by the find dialog.
package find

import (
	"errors"
	"unicode"

	"github.com/debemdeboas/markpad/internal/document"
)

var (
	ErrEmptyFind = errors.New("find text is empty")
	ErrNotFound  = errors.New("not found")
)

// Target is the editing surface a session searches.
type Target interface {
	Text() string
	Selection() document.Selection
	SetSelection(document.Selection)
	ReplaceSelection(string)
	// Apply replaces the whole text and selection as one undo step.
	Apply(text string, sel document.Selection)
}

type State int

const (
	Idle State = iota
	Positioned
)

func (s State) String() string {
	if s == Positioned {
		return "positioned"
	}
	return "idle"
}

// Session is one opening of the find/replace dialog. A session starts Idle;
// a successful search moves it to Positioned and a failed one back to Idle.
type Session struct {
	target Target

	Find          string
	Replace       string
	CaseSensitive bool

	lastFound int
}

func NewSession(target Target) *Session {
	return &Session{target: target, lastFound: -1}
}

func (s *Session) State() State {
	if s.lastFound >= 0 {
		return Positioned
	}
	return Idle
}

// LastFound returns the offset of the previous match in this session.
func (s *Session) LastFound() (int, bool) {
	return s.lastFound, s.lastFound >= 0
}

// Reset returns the session to Idle.
func (s *Session) Reset() {
	s.lastFound = -1
}

// FindNext selects the next match after the previous one, or after the
// current selection when Idle, wrapping around to the start once.
func (s *Session) FindNext() (document.Selection, error) {
	pattern := []rune(s.Find)
	if len(pattern) == 0 {
		return document.Selection{}, ErrEmptyFind
	}

	text := []rune(s.target.Text())

	var start int
	if s.lastFound >= 0 {
		start = s.lastFound + 1
	} else {
		sel := s.target.Selection()
		start = sel.Start + sel.Length
	}
	if start >= len(text) {
		start = 0
	}

	index := indexRunes(text, pattern, start, s.CaseSensitive)
	if index < 0 && start > 0 {
		index = indexRunes(text, pattern, 0, s.CaseSensitive)
	}

	if index < 0 {
		s.lastFound = -1
		return document.Selection{}, ErrNotFound
	}

	match := document.Selection{Start: index, Length: len(pattern)}
	s.target.SetSelection(match)
	s.lastFound = index
	return match, nil
}

// ReplaceNext replaces the selection when it equals the find text under the
// active comparison, then moves to the next match either way. replaced
// reports whether a replacement happened.
func (s *Session) ReplaceNext() (replaced bool, match document.Selection, err error) {
	if s.Find == "" {
		return false, document.Selection{}, ErrEmptyFind
	}

	sel := s.target.Selection()
	if sel.Length > 0 {
		text := []rune(s.target.Text())
		sel = sel.Clamp(len(text))
		if equalRunes(text[sel.Start:sel.End()], []rune(s.Find), s.CaseSensitive) {
			s.target.ReplaceSelection(s.Replace)
			replaced = true
		}
	}

	match, err = s.FindNext()
	return replaced, match, err
}

// ReplaceAll replaces every match in the target and returns the count. The
// caret ends up right after the last replacement.
func (s *Session) ReplaceAll() (int, error) {
	if s.Find == "" {
		return 0, ErrEmptyFind
	}

	text, count, end := replaceAll(s.target.Text(), s.Find, s.Replace, s.CaseSensitive)
	if count == 0 {
		return 0, ErrNotFound
	}

	s.target.Apply(text, document.Caret(end))
	return count, nil
}

// Index returns the rune offset of the first match of pattern in text at or
// after from, or -1.
func Index(text, pattern string, from int, caseSensitive bool) int {
	return indexRunes([]rune(text), []rune(pattern), from, caseSensitive)
}

// ReplaceAll scans text once from left to right. After each replacement the
// scan resumes right after the inserted text, so a replacement that contains
// the pattern is never matched again in the same pass.
func ReplaceAll(text, pattern, replacement string, caseSensitive bool) (string, int) {
	out, count, _ := replaceAll(text, pattern, replacement, caseSensitive)
	return out, count
}

// replaceAll also returns the rune offset just past the last replacement.
func replaceAll(text, pattern, replacement string, caseSensitive bool) (string, int, int) {
	p := []rune(pattern)
	if len(p) == 0 {
		return text, 0, 0
	}
	r := []rune(replacement)
	out := []rune(text)

	count := 0
	index := 0
	end := 0
	for {
		index = indexRunes(out, p, index, caseSensitive)
		if index < 0 {
			break
		}

		next := make([]rune, 0, len(out)-len(p)+len(r))
		next = append(next, out[:index]...)
		next = append(next, r...)
		next = append(next, out[index+len(p):]...)
		out = next

		index += len(r)
		end = index
		count++
	}

	return string(out), count, end
}

func indexRunes(text, pattern []rune, from int, caseSensitive bool) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(pattern) <= len(text); i++ {
		if equalRunes(text[i:i+len(pattern)], pattern, caseSensitive) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune, caseSensitive bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if caseSensitive || unicode.ToUpper(a[i]) != unicode.ToUpper(b[i]) {
			return false
		}
	}
	return true
}
