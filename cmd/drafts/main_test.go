package main

import (
	"testing"
	"time"

	"github.com/debemdeboas/markpad/internal/repository/editor"
)

func TestParseFuzzyTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-05-01", "2024-05-01 00:00", "2024-05-01 00:00:00", "2024-05-01T00:00:00Z"} {
		got, err := parseFuzzyTime(in)
		if err != nil {
			t.Errorf("parseFuzzyTime(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseFuzzyTime(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseFuzzyTime("last tuesday"); err == nil {
		t.Error("Expected an error for an unknown layout")
	}
}

func TestPurge(t *testing.T) {
	repo := editor.NewMemoryRepository()
	id := editor.IdForPath("/tmp/notes.md")
	if err := repo.SaveDraft(id, "/tmp/notes.md", []byte("draft")); err != nil {
		t.Fatal(err)
	}

	if err := purge(repo, []string{"-before", "2000-01-01"}); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := repo.GetDraft(id); err != nil {
		t.Errorf("Expected a recent draft to survive, got %v", err)
	}

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	if err := purge(repo, []string{"-before", future}); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := repo.GetDraft(id); err == nil {
		t.Error("Expected the draft to be purged")
	}

	if err := purge(repo, nil); err == nil {
		t.Error("Expected -before to be required")
	}
}
