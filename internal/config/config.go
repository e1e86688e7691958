package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" default:"1"`
	Editor  EditorConfig  `yaml:"editor"`
	Preview PreviewConfig `yaml:"preview"`
	Images  ImagesConfig  `yaml:"images"`
	Drafts  DraftsConfig  `yaml:"drafts"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
	// File receives the log while the editor owns the terminal. Empty means the user cache dir.
	File string `yaml:"file" default:""`
}

type EditorConfig struct {
	TabWidth    int  `yaml:"tab_width" default:"4"`
	WordWrap    bool `yaml:"word_wrap" default:"true"`
	LineNumbers bool `yaml:"line_numbers" default:"true"`
}

type PreviewConfig struct {
	Addr        string `yaml:"addr" default:"127.0.0.1:0"`
	DebounceMS  int    `yaml:"debounce_ms" default:"300"`
	Engine      string `yaml:"engine" default:"goldmark"`
	SyntaxTheme string `yaml:"syntax_theme" default:"github"`
	OpenBrowser bool   `yaml:"open_browser" default:"false"`
	Visible     bool   `yaml:"visible" default:"true"`
}

// Debounce returns the quiescence window of the live preview.
func (p PreviewConfig) Debounce() time.Duration {
	if p.DebounceMS <= 0 {
		return DefaultPreviewDebounce
	}
	return time.Duration(p.DebounceMS) * time.Millisecond
}

type ImagesConfig struct {
	DirName string `yaml:"dir_name" default:"images"`
	// FallbackDir is used while the document has never been saved. Empty means <documents>/markpad/images.
	FallbackDir string `yaml:"fallback_dir" default:""`
}

type DraftsConfig struct {
	Enabled     bool   `yaml:"enabled" default:"true"`
	Backend     string `yaml:"backend" default:"sqlite"`
	Path        string `yaml:"path" default:""`
	Compression string `yaml:"compression" default:"zstd"`
}

var AppConfig *Config

// DefaultConfigPath returns ~/.config/markpad/config.yaml, or a relative
// config.yaml when the home directory cannot be resolved.
func DefaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName, ConfigFileName)
	}
	return ConfigFileName
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	AppConfig = config
	return config, nil
}

// Validate rejects values the editor cannot run with.
func (c *Config) Validate() error {
	switch c.Preview.Engine {
	case EngineGoldmark, EngineClassic, EngineMmark:
	default:
		return fmt.Errorf("invalid preview engine %q", c.Preview.Engine)
	}

	switch c.Drafts.Backend {
	case DraftsBackendSQLite, DraftsBackendMemory:
	default:
		return fmt.Errorf("invalid drafts backend %q", c.Drafts.Backend)
	}

	switch c.Drafts.Compression {
	case CompressionZstd, CompressionGzip, CompressionNone:
	default:
		return fmt.Errorf("invalid drafts compression %q", c.Drafts.Compression)
	}

	if c.Preview.DebounceMS < 0 {
		return fmt.Errorf("invalid preview debounce %dms", c.Preview.DebounceMS)
	}

	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("invalid tab width %d", c.Editor.TabWidth)
	}

	if strings.ContainsAny(c.Images.DirName, `/\`) || c.Images.DirName == "" {
		return fmt.Errorf("invalid images dir name %q", c.Images.DirName)
	}

	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
