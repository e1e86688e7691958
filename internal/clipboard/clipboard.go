// Package clipboard reads and writes the system clipboard. Text goes through
// atotto/clipboard; images and file lists are read with the platform
// clipboard tools (wl-paste, xclip, osascript) since they carry MIME types.
package clipboard

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var clipLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	clipLogger = l
}

var ErrEmpty = errors.New("clipboard is empty")

type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindImage
	KindFiles
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindFiles:
		return "files"
	default:
		return "empty"
	}
}

// Content is what a paste found on the clipboard.
type Content struct {
	Kind  Kind
	Text  string
	Image image.Image
	Files []string
}

// Clipboard is the subset the editor needs.
type Clipboard interface {
	Read() (Content, error)
	WriteText(string) error
	HasContent() bool
}

// Runner executes an external command and returns its stdout.
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// System is the clipboard of the desktop session.
type System struct {
	run      Runner
	lookPath func(string) (string, error)
	readText func() (string, error)
}

func NewSystem() *System {
	return &System{
		run:      execRunner,
		lookPath: exec.LookPath,
		readText: clipboard.ReadAll,
	}
}

// tool describes how one clipboard program lists and fetches MIME types.
type tool struct {
	name  string
	types []string
	fetch func(mime string) []string
}

var tools = []tool{
	{
		name:  "wl-paste",
		types: []string{"--list-types"},
		fetch: func(mime string) []string { return []string{"--no-newline", "--type", mime} },
	},
	{
		name:  "xclip",
		types: []string{"-selection", "clipboard", "-t", "TARGETS", "-o"},
		fetch: func(mime string) []string { return []string{"-selection", "clipboard", "-t", mime, "-o"} },
	},
}

const (
	mimeURIList = "text/uri-list"
	mimePNG     = "image/png"
)

// imageTypes are tried in order of preference.
var imageTypes = []string{mimePNG, "image/bmp", "image/jpeg", "image/gif", "image/webp"}

// Read returns an image if the clipboard holds one, else a file list, else text.
func (s *System) Read() (Content, error) {
	if t, ok := s.tool(); ok {
		types, err := s.run(t.name, t.types...)
		if err == nil {
			offered := parseTypes(types)
			if c, ok := s.readImage(t, offered); ok {
				return c, nil
			}
			if offered[mimeURIList] {
				if data, err := s.run(t.name, t.fetch(mimeURIList)...); err == nil {
					if files := ParseURIList(string(data)); len(files) > 0 {
						return Content{Kind: KindFiles, Files: files}, nil
					}
				}
			}
		} else {
			clipLogger.Debug().Err(err).Str("tool", t.name).Msg("Listing clipboard types failed")
		}
	} else if runtime.GOOS == "darwin" {
		if c, ok := s.readDarwinImage(); ok {
			return c, nil
		}
	}

	text, err := s.readText()
	if err != nil {
		return Content{}, fmt.Errorf("read clipboard text: %w", err)
	}
	if text == "" {
		return Content{}, ErrEmpty
	}
	return Content{Kind: KindText, Text: text}, nil
}

func (s *System) readImage(t tool, offered map[string]bool) (Content, bool) {
	for _, mime := range imageTypes {
		if !offered[mime] {
			continue
		}
		data, err := s.run(t.name, t.fetch(mime)...)
		if err != nil {
			clipLogger.Warn().Err(err).Str("mime", mime).Msg("Fetching clipboard image failed")
			continue
		}
		img, format, err := DecodeImage(data)
		if err != nil {
			clipLogger.Warn().Err(err).Str("mime", mime).Msg("Decoding clipboard image failed")
			continue
		}
		clipLogger.Debug().Str("format", format).Msg("Read image from clipboard")
		return Content{Kind: KindImage, Image: img}, true
	}
	return Content{}, false
}

// readDarwinImage asks AppleScript for the PNG flavour of the clipboard.
func (s *System) readDarwinImage() (Content, bool) {
	out, err := s.run("osascript", "-e", "get the clipboard as «class PNGf»")
	if err != nil {
		return Content{}, false
	}
	data, err := decodeAppleScriptData(string(out))
	if err != nil {
		return Content{}, false
	}
	img, _, err := DecodeImage(data)
	if err != nil {
		return Content{}, false
	}
	return Content{Kind: KindImage, Image: img}, true
}

func (s *System) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// HasContent is re-evaluated on every call; nothing is cached.
func (s *System) HasContent() bool {
	if t, ok := s.tool(); ok {
		if types, err := s.run(t.name, t.types...); err == nil && len(parseTypes(types)) > 0 {
			return true
		}
	}
	text, err := s.readText()
	return err == nil && text != ""
}

func (s *System) tool() (tool, bool) {
	for _, t := range tools {
		if _, err := s.lookPath(t.name); err == nil {
			return t, true
		}
	}
	return tool{}, false
}

// DecodeImage decodes any of the registered bitmap formats.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmpty
	}
	return image.Decode(bytes.NewReader(data))
}

// ParseURIList extracts local paths from a text/uri-list payload. Comment
// lines and non-file URIs are skipped.
func ParseURIList(list string) []string {
	var files []string
	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Scheme != "file" || u.Path == "" {
			continue
		}
		files = append(files, u.Path)
	}
	return files
}

func parseTypes(out []byte) map[string]bool {
	types := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			types[line] = true
		}
	}
	return types
}

// decodeAppleScriptData turns «data PNGf89504E47...» into bytes.
func decodeAppleScriptData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "«data ")
	end := strings.LastIndex(s, "»")
	if start < 0 || end < 0 {
		return nil, errors.New("not applescript data")
	}
	hexData := s[start+len("«data "):end]
	if len(hexData) < 4 {
		return nil, errors.New("short applescript data")
	}
	hexData = hexData[4:] // class code, e.g. PNGf

	data, err := hex.DecodeString(hexData)
	if err != nil {
		return nil, fmt.Errorf("decode applescript hex: %w", err)
	}
	return data, nil
}
