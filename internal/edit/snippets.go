package edit

import "github.com/debemdeboas/markpad/internal/document"

// Snippet is a toolbar command that surrounds the selection with markdown.
type Snippet struct {
	ID    string
	Title string
	Left  string
	Right string
}

func (s Snippet) Result(text string, sel document.Selection) Result {
	return WrapWith(text, sel, s.Left, s.Right)
}

// Run applies the snippet to the current document selection.
func (s Snippet) Run(d *document.Document) {
	Apply(d, s.Result(d.Text(), d.Selection()))
}

const (
	MarkerBold   = "**"
	MarkerItalic = "*"
)

var (
	Heading1     = Snippet{ID: "heading-1", Title: "Heading 1", Left: "# "}
	Heading2     = Snippet{ID: "heading-2", Title: "Heading 2", Left: "## "}
	Heading3     = Snippet{ID: "heading-3", Title: "Heading 3", Left: "### "}
	Bold         = Snippet{ID: "bold", Title: "Bold", Left: MarkerBold, Right: MarkerBold}
	Italic       = Snippet{ID: "italic", Title: "Italic", Left: MarkerItalic, Right: MarkerItalic}
	CodeBlock    = Snippet{ID: "code-block", Title: "Code block", Left: "```\n", Right: "\n```"}
	BulletList   = Snippet{ID: "bullet-list", Title: "Bullet list", Left: "- "}
	NumberedList = Snippet{ID: "numbered-list", Title: "Numbered list", Left: "1. "}
)

// Snippets lists the snippet commands in menu order.
var Snippets = []Snippet{Heading1, Heading2, Heading3, Bold, Italic, CodeBlock, BulletList, NumberedList}
