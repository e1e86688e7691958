// Package util provides content hashing and front matter parsing for markdown documents.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"

	"github.com/mmarkdown/mmark/v2/mast"
)

// Front matter delimiters: mmark's %%% block and the Hugo style +++ block, both TOML.
var frontMatterDelimiters = [][]byte{[]byte("%%%"), []byte("+++")}

type ExtendedTitleData struct {
	*mast.TitleData
	Consumed     int
	ToolbarTitle string
}

// DisplayTitle returns the title with the series prefix used in the preview tab.
func (e *ExtendedTitleData) DisplayTitle() string {
	if e == nil || e.TitleData == nil || e.Title == "" {
		return ""
	}

	var s strings.Builder
	if e.SeriesInfo.Name != "" && e.SeriesInfo.Value != "" {
		s.WriteString("[")
		s.WriteString(e.SeriesInfo.Name)
		s.WriteString("-")
		s.WriteString(e.SeriesInfo.Value)
		s.WriteString("] ")
	}
	s.WriteString(e.Title)
	return s.String()
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

func GetFrontMatter(md []byte) (*ExtendedTitleData, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	for _, delimiter := range frontMatterDelimiters {
		// Check if md is long enough to contain the delimiter
		if len(md) < 2*len(delimiter) || !bytes.HasPrefix(md, delimiter) {
			continue
		}
		return parseFrontMatter(md, delimiter)
	}

	return nil, fmt.Errorf("invalid front matter format")
}

func parseFrontMatter(md, delimiter []byte) (*ExtendedTitleData, error) {
	second := bytes.Index(md[len(delimiter):], delimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	end := second + 2*len(delimiter) + 1
	if end > len(md) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	frontMatter := md[len(delimiter) : end-len(delimiter)-1]
	info := &ExtendedTitleData{
		TitleData: &mast.TitleData{},
	}

	if _, err := toml.Decode(string(frontMatter), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if info.Language == "" {
		info.Language = "en"
	}
	info.Consumed = end

	return info, nil
}

// StripFrontMatter returns md without a leading front matter block, for engines that would
// otherwise render the TOML as a paragraph.
func StripFrontMatter(md []byte) []byte {
	info, err := GetFrontMatter(md)
	if err != nil {
		return md
	}

	trimmed := bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	if info.Consumed >= len(trimmed) {
		return nil
	}
	return trimmed[info.Consumed:]
}
