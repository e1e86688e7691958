// Package edit implements the markdown snippet commands. Every command is a
// pure function of the text and selection; Apply commits a result to a
// document as one undoable step.
package edit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/debemdeboas/markpad/internal/document"
)

var ErrEmptyURL = errors.New("a URL is required")

// Result is the text and selection produced by a command.
type Result struct {
	Text      string
	Selection document.Selection
}

// Apply commits r to d.
func Apply(d *document.Document, r Result) {
	d.Apply(r.Text, r.Selection)
}

// WrapWith surrounds the selection with left and right. The new selection
// covers the original inner text only.
func WrapWith(text string, sel document.Selection, left, right string) Result {
	runes := []rune(text)
	sel = sel.Clamp(len(runes))

	var b strings.Builder
	b.WriteString(string(runes[:sel.Start]))
	b.WriteString(left)
	b.WriteString(string(runes[sel.Start:sel.End()]))
	b.WriteString(right)
	b.WriteString(string(runes[sel.End():]))

	return Result{
		Text:      b.String(),
		Selection: document.Selection{Start: sel.Start + runeLen(left), Length: sel.Length},
	}
}

// InsertPrefix puts prefix in front of the selection and reselects the
// original text after it.
func InsertPrefix(text string, sel document.Selection, prefix string) Result {
	return WrapWith(text, sel, prefix, "")
}

// Wrap surrounds the selection with marker on both sides. It always adds
// markers; an already wrapped selection is wrapped again.
func Wrap(text string, sel document.Selection, marker string) Result {
	return WrapWith(text, sel, marker, marker)
}

// InsertAtCursor replaces the selection with s and puts the caret after it.
func InsertAtCursor(text string, sel document.Selection, s string) Result {
	runes := []rune(text)
	sel = sel.Clamp(len(runes))

	var b strings.Builder
	b.WriteString(string(runes[:sel.Start]))
	b.WriteString(s)
	b.WriteString(string(runes[sel.End():]))

	return Result{
		Text:      b.String(),
		Selection: document.Caret(sel.Start + runeLen(s)),
	}
}

// Link is the payload of the link dialog.
type Link struct {
	Text string
	URL  string
}

// Validate rejects a blank URL.
func (l Link) Validate() error {
	if strings.TrimSpace(l.URL) == "" {
		return ErrEmptyURL
	}
	return nil
}

// Markdown renders the link. A non-empty selection overrides the dialog text.
func (l Link) Markdown(selected string) string {
	label := l.Text
	if selected != "" {
		label = selected
	}
	return fmt.Sprintf("[%s](%s)", label, l.URL)
}

// InsertLink replaces the selection with the link and collapses the caret
// after it.
func InsertLink(text string, sel document.Selection, l Link) (Result, error) {
	if err := l.Validate(); err != nil {
		return Result{}, err
	}

	runes := []rune(text)
	sel = sel.Clamp(len(runes))
	selected := string(runes[sel.Start:sel.End()])
	return InsertAtCursor(text, sel, l.Markdown(selected)), nil
}

// InsertImage inserts an image reference for imagePath at the cursor.
func InsertImage(text string, sel document.Selection, docPath, imagePath string) Result {
	return InsertAtCursor(text, sel, ImageReference(docPath, imagePath))
}

func runeLen(s string) int {
	return len([]rune(s))
}
