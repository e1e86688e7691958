package theme

import (
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/markpad/internal/cache"
	"github.com/debemdeboas/markpad/internal/config"
)

func TestGenerateSyntaxCSS(t *testing.T) {
	testCases := []struct {
		name          string
		theme         string
		expectEmpty   bool
		expectInCache bool
	}{
		{
			name:          "Valid Theme - Monokai",
			theme:         "monokai",
			expectEmpty:   false,
			expectInCache: true,
		},
		{
			name:          "Valid Theme - Github",
			theme:         "github",
			expectEmpty:   false,
			expectInCache: true,
		},
		{
			name:          "Valid Theme - Gruvbox",
			theme:         "gruvbox",
			expectEmpty:   false,
			expectInCache: true,
		},
		{
			name:          "Non-existent Theme - Fallback",
			theme:         "nonexistent-theme-12345",
			expectEmpty:   false, // Should return fallback style, not empty
			expectInCache: true,
		},
		{
			name:          "Empty Theme Name",
			theme:         "",
			expectEmpty:   false, // Should return fallback style, not empty
			expectInCache: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clear syntax cache before each test for isolation
			clearSyntaxCacheForTheme(tc.theme)

			// First call - should generate and cache
			css1 := GenerateSyntaxCSS(tc.theme)

			if tc.expectEmpty && css1 != "" {
				t.Errorf("Expected empty CSS, but got content")
			}
			if !tc.expectEmpty && css1 == "" {
				t.Errorf("Expected CSS content, but got empty")
			}

			// Verify the CSS contains expected content
			cssStr := string(css1)
			if !tc.expectEmpty {
				if !strings.Contains(cssStr, ".chroma") {
					t.Errorf("Expected CSS to contain '.chroma' class")
				}
			}

			// Verify caching
			cachedCSS, found := cache.GetSyntaxCSS(tc.theme)
			if tc.expectInCache && !found {
				t.Errorf("Expected CSS to be in cache, but it wasn't")
			}
			if !tc.expectInCache && found {
				t.Errorf("Expected CSS NOT to be in cache, but it was")
			}
			if tc.expectInCache && found && cachedCSS != css1 {
				t.Errorf("Cached CSS does not match generated CSS")
			}

			// Second call - should hit the cache
			css2 := GenerateSyntaxCSS(tc.theme)
			if css1 != css2 {
				t.Errorf("Expected second call to return identical CSS from cache")
			}
		})
	}
}

func TestGetFormatter(t *testing.T) {
	formatter := GetFormatter()
	if formatter == nil {
		t.Fatal("Expected formatter to be non-nil")
	}
}

func TestGetSyntaxThemes(t *testing.T) {
	themes := GetSyntaxThemes()
	if len(themes) == 0 {
		t.Error("Expected at least one syntax theme")
	}

	// Verify themes are sorted
	for i := 1; i < len(themes); i++ {
		if themes[i-1] > themes[i] {
			t.Errorf("Themes are not sorted: %s > %s", themes[i-1], themes[i])
		}
	}

	// Verify some common themes exist
	commonThemes := []string{"github", "monokai", "gruvbox"}
	for _, theme := range commonThemes {
		found := false
		for _, availableTheme := range themes {
			if availableTheme == theme {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected common theme %s to be available", theme)
		}
	}
}

func TestIsLight(t *testing.T) {
	testCases := []struct {
		name  string
		theme string
		light bool
	}{
		{"github", "github", true},
		{"catppuccin latte", "catppuccin-latte", true},
		{"monokai", "monokai", false},
		{"gruvbox", "gruvbox", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsLight(styles.Get(tc.theme)); got != tc.light {
				t.Errorf("Expected IsLight(%s) = %v, got %v", tc.theme, tc.light, got)
			}
		})
	}
}

func TestLightSyntaxTheme(t *testing.T) {
	testCases := []struct {
		name     string
		theme    string
		expected string
	}{
		{"Light theme kept", "catppuccin-latte", "catppuccin-latte"},
		{"Case insensitive", "GitHub", "github"},
		{"Dark theme replaced", "monokai", config.DefaultLightSyntaxTheme},
		{"Unknown theme replaced", "nonexistent-theme-12345", config.DefaultLightSyntaxTheme},
		{"Empty theme replaced", "", config.DefaultLightSyntaxTheme},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LightSyntaxTheme(tc.theme); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestGetLightSyntaxThemes(t *testing.T) {
	themes := GetLightSyntaxThemes()
	if !slices.Contains(themes, "github") {
		t.Error("Expected github among the light themes")
	}
	if slices.Contains(themes, "monokai") {
		t.Error("Expected monokai to be excluded")
	}
}

// Helper functions for testing

func clearSyntaxCacheForTheme(theme string) {
	// For testing isolation, we simply ignore the specific theme clearing
	// since we don't have a direct API to clear individual cache entries
	// This is acceptable for our test purposes
}

// BenchmarkGenerateSyntaxCSS tests the performance impact of caching
func BenchmarkGenerateSyntaxCSS(b *testing.B) {
	theme := "monokai"

	b.Run("Cached", func(b *testing.B) {
		// Run once to populate the cache
		GenerateSyntaxCSS(theme)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			GenerateSyntaxCSS(theme)
		}
	})

	b.Run("Uncached", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			// Clear all caches each time to simulate uncached performance
			cache.ClearRenderedMarkdownCache()
			GenerateSyntaxCSS(theme)
		}
	})
}
