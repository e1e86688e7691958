// Package document holds the text being edited together with its selection,
// file metadata, change subscribers and undo history.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

var docLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	docLogger = l
}

const EncodingUTF8 = "UTF-8"

var (
	ErrNoPath = errors.New("document has no file path")
	// ErrNotUTF8 refuses files that would be rewritten lossily on save.
	ErrNotUTF8 = errors.New("file is not valid UTF-8")
)

// Selection is a rune range of the document text.
type Selection struct {
	Start  int
	Length int
}

// Caret returns an empty selection at offset.
func Caret(offset int) Selection {
	return Selection{Start: offset}
}

func (s Selection) End() int {
	return s.Start + s.Length
}

func (s Selection) Empty() bool {
	return s.Length == 0
}

// Clamp returns s moved into [0, n] so that Start+Length <= n.
func (s Selection) Clamp(n int) Selection {
	if s.Start < 0 {
		s.Start = 0
	}
	if s.Start > n {
		s.Start = n
	}
	if s.Length < 0 {
		s.Length = 0
	}
	if s.Start+s.Length > n {
		s.Length = n - s.Start
	}
	return s
}

// Document is the editor buffer. It is owned by a single loop and is not safe
// for concurrent use.
type Document struct {
	text     []rune
	sel      Selection
	path     string
	modified bool
	encoding string

	listeners map[int]func()
	nextID    int

	history history
}

func New() *Document {
	return &Document{
		encoding:  EncodingUTF8,
		listeners: make(map[int]func()),
	}
}

// Subscribe registers fn to run after every text mutation. The returned
// function removes the subscription.
func (d *Document) Subscribe(fn func()) func() {
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() {
		delete(d.listeners, id)
	}
}

func (d *Document) notify() {
	for _, fn := range d.listeners {
		fn()
	}
}

func (d *Document) Text() string {
	return string(d.text)
}

// Len is the number of runes in the document.
func (d *Document) Len() int {
	return len(d.text)
}

func (d *Document) Selection() Selection {
	return d.sel
}

// SetSelection moves the selection, clamped into the text.
func (d *Document) SetSelection(s Selection) {
	d.sel = s.Clamp(len(d.text))
	d.history.breakTyping()
}

func (d *Document) SelectedText() string {
	return string(d.text[d.sel.Start:d.sel.End()])
}

func (d *Document) SelectAll() {
	d.SetSelection(Selection{Start: 0, Length: len(d.text)})
}

func (d *Document) Path() string {
	return d.path
}

// Name is the base name of the file, or "Untitled".
func (d *Document) Name() string {
	if d.path == "" {
		return "Untitled"
	}
	return filepath.Base(d.path)
}

func (d *Document) Dir() string {
	if d.path == "" {
		return ""
	}
	return filepath.Dir(d.path)
}

func (d *Document) IsModified() bool {
	return d.modified
}

func (d *Document) Encoding() string {
	return d.encoding
}

// CursorPosition returns the 1-based line and column of the caret.
func (d *Document) CursorPosition() (line, column int) {
	line, column = 1, 1
	caret := d.sel.End()
	for i := 0; i < caret && i < len(d.text); i++ {
		if d.text[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// Apply replaces the whole text and selection as a single undoable step.
func (d *Document) Apply(text string, sel Selection) {
	d.history.push(d.snapshot())
	d.set([]rune(text), sel)
}

// ReplaceSelection replaces the selected runes with s and selects the
// inserted text.
func (d *Document) ReplaceSelection(s string) {
	ins := []rune(s)
	d.history.push(d.snapshot())
	d.set(d.splice(d.sel, ins), Selection{Start: d.sel.Start, Length: len(ins)})
}

// InsertText replaces the selection with s and leaves the caret after it.
// Consecutive single-rune typing is merged into one undo step until a space,
// a newline, a caret move or another command closes it.
func (d *Document) InsertText(s string) {
	ins := []rune(s)
	before := d.snapshot()
	typed := len(ins) == 1 && d.sel.Empty() && !unicode.IsSpace(ins[0])
	if !typed || !d.history.continues(d.sel.Start) {
		d.history.push(before)
	}
	caret := d.sel.Start + len(ins)
	d.set(d.splice(d.sel, ins), Caret(caret))
	if typed {
		d.history.typingAt(caret)
	}
}

// DeleteBackward removes the selection, or the rune before the caret.
func (d *Document) DeleteBackward() {
	r := d.sel
	if r.Empty() {
		if r.Start == 0 {
			return
		}
		r = Selection{Start: r.Start - 1, Length: 1}
	}
	d.history.push(d.snapshot())
	d.set(d.splice(r, nil), Caret(r.Start))
}

// DeleteForward removes the selection, or the rune after the caret.
func (d *Document) DeleteForward() {
	r := d.sel
	if r.Empty() {
		if r.Start >= len(d.text) {
			return
		}
		r.Length = 1
	}
	d.history.push(d.snapshot())
	d.set(d.splice(r, nil), Caret(r.Start))
}

func (d *Document) CanUndo() bool {
	return len(d.history.undo) > 0
}

func (d *Document) CanRedo() bool {
	return len(d.history.redo) > 0
}

func (d *Document) Undo() bool {
	prev, ok := d.history.popUndo(d.snapshot())
	if !ok {
		return false
	}
	d.set(prev.text, prev.sel)
	return true
}

func (d *Document) Redo() bool {
	next, ok := d.history.popRedo(d.snapshot())
	if !ok {
		return false
	}
	d.set(next.text, next.sel)
	return true
}

// MarkModified flags the document as changed without touching the text.
func (d *Document) MarkModified() {
	d.modified = true
}

// Reset discards the document and starts an empty, untitled one.
func (d *Document) Reset() {
	d.replaceWholesale(nil, "")
}

// Load replaces the document with the contents of path. On failure the
// document is left as it was.
func (d *Document) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("read %s: %w", path, ErrNotUTF8)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	d.replaceWholesale([]rune(string(data)), abs)
	docLogger.Info().Str("path", abs).Int("runes", len(d.text)).Msg("Document loaded")
	return nil
}

// LoadText replaces the document with text while keeping path as its file,
// marked modified. Used to restore a draft over a saved file.
func (d *Document) LoadText(text, path string) {
	d.replaceWholesale([]rune(text), path)
	d.modified = true
}

// Save writes the full text to path, or to the current path when path is
// empty. A successful save adopts the path and clears the modified flag.
func (d *Document) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return ErrNoPath
	}

	if err := os.WriteFile(path, []byte(string(d.text)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	d.path = path
	d.modified = false
	docLogger.Info().Str("path", path).Int("runes", len(d.text)).Msg("Document saved")
	return nil
}

func (d *Document) replaceWholesale(text []rune, path string) {
	d.text = text
	d.sel = Selection{}
	d.path = path
	d.modified = false
	d.history = history{}
	d.notify()
}

func (d *Document) snapshot() snapshot {
	return snapshot{text: d.text, sel: d.sel}
}

// set installs a new text. Slices are never mutated in place, so snapshots
// may share them.
func (d *Document) set(text []rune, sel Selection) {
	d.text = text
	d.sel = sel.Clamp(len(text))
	d.modified = true
	d.notify()
}

func (d *Document) splice(r Selection, ins []rune) []rune {
	r = r.Clamp(len(d.text))
	out := make([]rune, 0, len(d.text)-r.Length+len(ins))
	out = append(out, d.text[:r.Start]...)
	out = append(out, ins...)
	out = append(out, d.text[r.End():]...)
	return out
}
