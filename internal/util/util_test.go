package util

import (
	"testing"
	"time"
)

func TestGetFrontMatter(t *testing.T) {
	testCases := []struct {
		name          string
		markdown      []byte
		expectError   bool
		expectedTitle string
		expectedDate  time.Time
	}{
		{
			name: "Valid Front Matter",
			markdown: []byte(`%%%
title = "Hello World"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError:   false,
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "No Front Matter",
			markdown: []byte(`# Just Content
No front matter here.`),
			expectError: true,
		},
		{
			name:        "Empty File",
			markdown:    []byte(""),
			expectError: true,
		},
		{
			name: "Content Before Front Matter",
			markdown: []byte(`
# This should be ignored
%%%
title = "Hello World"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError: true,
		},
		{
			name: "Extra Whitespace",
			markdown: []byte(`


%%%

title = "Hello World"
date = 2025-01-01 00:00:00Z

%%%
# Content`),
			expectError:   false,
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Malformed Front Matter",
			markdown: []byte(`%%%
title = "Incomplete
# Content`),
			expectError: true,
		},
		{
			name: "Front Matter with No Title",
			markdown: []byte(`%%%
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError:   false,
			expectedTitle: "",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Front Matter with No Date",
			markdown: []byte(`%%%
title = "No Date"
%%%
# Content`),
			expectError:   false,
			expectedTitle: "No Date",
			expectedDate:  time.Time{}, // Zero value for time
		},
		{
			name:        "Only Delimiters",
			markdown:    []byte("%%% %%%"),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := GetFrontMatter(tc.markdown)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				}
				if info != nil {
					t.Errorf("Expected nil info when error occurs, but got %+v", info)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}

			if info == nil {
				t.Fatal("Expected front matter info, but got nil")
			}

			if info.Title != tc.expectedTitle {
				t.Errorf("Expected title '%s', but got '%s'", tc.expectedTitle, info.Title)
			}

			if !info.Date.Equal(tc.expectedDate) {
				t.Errorf("Expected date '%v', but got '%v'", tc.expectedDate, info.Date)
			}
		})
	}
}

func TestGetFrontMatterPlusDelimiter(t *testing.T) {
	md := []byte("+++\ntitle = \"Hugo Style\"\n+++\n# Body")

	info, err := GetFrontMatter(md)
	if err != nil {
		t.Fatalf("Expected no error, but got: %v", err)
	}
	if info.Title != "Hugo Style" {
		t.Errorf("Expected title 'Hugo Style', but got '%s'", info.Title)
	}
	if info.Language != "en" {
		t.Errorf("Expected default language 'en', but got '%s'", info.Language)
	}
}

func TestDisplayTitle(t *testing.T) {
	testCases := []struct {
		name     string
		markdown string
		expected string
	}{
		{"plain title", "%%%\ntitle = \"Notes\"\n%%%\n", "Notes"},
		{"series", "%%%\ntitle = \"Part\"\n[seriesInfo]\nname = \"Go\"\nvalue = \"2\"\n%%%\n", "[Go-2] Part"},
		{"no title", "%%%\ndate = 2025-01-01 00:00:00Z\n%%%\n", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := GetFrontMatter([]byte(tc.markdown))
			if err != nil {
				t.Fatalf("GetFrontMatter: %v", err)
			}
			if got := info.DisplayTitle(); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}

	var nilInfo *ExtendedTitleData
	if nilInfo.DisplayTitle() != "" {
		t.Error("Expected empty title for nil info")
	}
}

func TestStripFrontMatter(t *testing.T) {
	testCases := []struct {
		name     string
		markdown string
		expected string
	}{
		{"with front matter", "%%%\ntitle = \"T\"\n%%%\n# Body\n", "# Body\n"},
		{"without front matter", "# Body\n", "# Body\n"},
		{"only front matter", "%%%\ntitle = \"T\"\n%%%\n", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(StripFrontMatter([]byte(tc.markdown)))
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHashString("hello")
	b := ContentHash([]byte("hello"))
	if a != b {
		t.Errorf("Expected string and byte hashes to match, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
	if ContentHashString("hello!") == a {
		t.Error("Expected different content to hash differently")
	}
}
