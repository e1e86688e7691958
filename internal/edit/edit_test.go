package edit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/debemdeboas/markpad/internal/document"
)

func sel(start, length int) document.Selection {
	return document.Selection{Start: start, Length: length}
}

func TestInsertPrefix(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		sel    document.Selection
		prefix string
		want   Result
	}{
		{"empty document", "", sel(0, 0), "# ", Result{"# ", sel(2, 0)}},
		{"selected word", "title here", sel(0, 5), "## ", Result{"## title here", sel(3, 5)}},
		{"middle of line", "a b", sel(2, 0), "- ", Result{"a - b", sel(4, 0)}},
		{"multibyte", "héllo", sel(1, 4), "1. ", Result{"h1. éllo", sel(4, 4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InsertPrefix(tt.text, tt.sel, tt.prefix)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("InsertPrefix mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		sel    document.Selection
		marker string
		want   Result
	}{
		{"bold word", "make this bold", sel(10, 4), MarkerBold, Result{"make this **bold**", sel(12, 4)}},
		{"italic caret", "ab", sel(1, 0), MarkerItalic, Result{"a**b", sel(2, 0)}},
		{"selection past end is clamped", "abc", sel(1, 10), MarkerBold, Result{"a**bc**", sel(3, 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.sel, tt.marker)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Wrap mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapAlwaysAdds(t *testing.T) {
	first := Wrap("x", sel(0, 1), MarkerBold)
	second := Wrap(first.Text, first.Selection, MarkerBold)

	if second.Text != "****x****" {
		t.Errorf("Expected wrapping a wrapped selection to add markers, got %q", second.Text)
	}
	if second.Selection != sel(4, 1) {
		t.Errorf("Expected inner selection (4,1), got %+v", second.Selection)
	}
}

func TestCodeBlock(t *testing.T) {
	got := CodeBlock.Result("fmt.Println()", sel(0, 13))

	want := Result{"```\nfmt.Println()\n```", sel(4, 13)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CodeBlock mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertAtCursor(t *testing.T) {
	got := InsertAtCursor("hello world", sel(6, 5), "gopher")

	want := Result{"hello gopher", sel(12, 0)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("InsertAtCursor mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertLink(t *testing.T) {
	t.Run("dialog text at caret", func(t *testing.T) {
		got, err := InsertLink("see ", sel(4, 0), Link{Text: "docs", URL: "https://go.dev"})
		if err != nil {
			t.Fatalf("InsertLink: %v", err)
		}
		want := Result{"see [docs](https://go.dev)", sel(26, 0)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("selection overrides dialog text", func(t *testing.T) {
		got, err := InsertLink("read this now", sel(5, 4), Link{Text: "ignored", URL: "u"})
		if err != nil {
			t.Fatalf("InsertLink: %v", err)
		}
		want := Result{"read [this](u) now", sel(14, 0)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("blank url rejected", func(t *testing.T) {
		_, err := InsertLink("", sel(0, 0), Link{Text: "x", URL: "  \t"})
		if !errors.Is(err, ErrEmptyURL) {
			t.Errorf("Expected ErrEmptyURL, got %v", err)
		}
	})
}

func TestImageReference(t *testing.T) {
	tests := []struct {
		name    string
		docPath string
		image   string
		want    string
	}{
		{"sibling images dir", "/a/b/doc.md", "/a/b/images/x.png", "![x.png](images/x.png)"},
		{"parent dir", "/a/b/doc.md", "/a/pics/y.jpg", "![y.jpg](../pics/y.jpg)"},
		{"unsaved document", "", "/a/b/images/x.png", "![x.png](/a/b/images/x.png)"},
		{"different root", "/a/b/doc.md", `D:\shots\z.png`, "![z.png](D:/shots/z.png)"},
		{"relative image path", "/a/b/doc.md", "images/x.png", "![x.png](images/x.png)"},
		{"file uri", "/a/b/doc.md", "file:///a/b/images/u.png", "![u.png](images/u.png)"},
		{"malformed uri", "/a/b/doc.md", "file://%zz/q.png", "![q.png](file://%zz/q.png)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageReference(tt.docPath, tt.image); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSnippetsRunOnDocument(t *testing.T) {
	d := document.New()
	d.Apply("Title", sel(0, 5))

	Heading1.Run(d)
	if d.Text() != "# Title" || d.Selection() != sel(2, 5) {
		t.Errorf("Heading1: got %q %+v", d.Text(), d.Selection())
	}

	d.Undo()
	if d.Text() != "Title" {
		t.Errorf("Expected snippet to undo in one step, got %q", d.Text())
	}

	if len(Snippets) != 8 {
		t.Errorf("Expected 8 snippet commands, got %d", len(Snippets))
	}
	seen := map[string]bool{}
	for _, s := range Snippets {
		if seen[s.ID] {
			t.Errorf("Duplicate snippet id %q", s.ID)
		}
		seen[s.ID] = true
	}
}
