package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)

	// This test mainly ensures the function doesn't panic
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Editor.TabWidth != 4 {
			t.Errorf("Expected tab width 4, got %d", config.Editor.TabWidth)
		}
		if !config.Editor.WordWrap {
			t.Error("Expected word wrap to be enabled by default")
		}
		if !config.Editor.LineNumbers {
			t.Error("Expected line numbers to be enabled by default")
		}

		if config.Preview.Addr != "127.0.0.1:0" {
			t.Errorf("Expected preview addr '127.0.0.1:0', got %q", config.Preview.Addr)
		}
		if config.Preview.DebounceMS != 300 {
			t.Errorf("Expected debounce 300ms, got %d", config.Preview.DebounceMS)
		}
		if config.Preview.Engine != EngineGoldmark {
			t.Errorf("Expected engine %q, got %q", EngineGoldmark, config.Preview.Engine)
		}
		if config.Preview.SyntaxTheme != DefaultLightSyntaxTheme {
			t.Errorf("Expected syntax theme %q, got %q", DefaultLightSyntaxTheme, config.Preview.SyntaxTheme)
		}
		if config.Preview.OpenBrowser {
			t.Error("Expected open_browser to be disabled by default")
		}
		if !config.Preview.Visible {
			t.Error("Expected preview to be visible by default")
		}

		if config.Images.DirName != "images" {
			t.Errorf("Expected images dir 'images', got %q", config.Images.DirName)
		}
		if config.Images.FallbackDir != "" {
			t.Errorf("Expected empty fallback dir, got %q", config.Images.FallbackDir)
		}

		if !config.Drafts.Enabled {
			t.Error("Expected drafts to be enabled by default")
		}
		if config.Drafts.Backend != DraftsBackendSQLite {
			t.Errorf("Expected drafts backend %q, got %q", DraftsBackendSQLite, config.Drafts.Backend)
		}
		if config.Drafts.Compression != CompressionZstd {
			t.Errorf("Expected drafts compression %q, got %q", CompressionZstd, config.Drafts.Compression)
		}

		if config.Logging.Level != "info" {
			t.Errorf("Expected log level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Non-pointer value is ignored", func(t *testing.T) {
		config := Config{}
		applyDefaults(config)

		if config.Version != "" {
			t.Errorf("Expected untouched copy, got version %q", config.Version)
		}
	})

	t.Run("Non-struct value is ignored", func(t *testing.T) {
		value := 42
		applyDefaults(&value)

		if value != 42 {
			t.Errorf("Expected 42, got %d", value)
		}
	})

	t.Run("Float and unsupported kinds", func(t *testing.T) {
		type TestStruct struct {
			Ratio   float64           `default:"0.5"`
			Ignored map[string]string `default:"a=b"`
			Bad     int               `default:"not-a-number"`
		}

		test := &TestStruct{}
		applyDefaults(test)

		if test.Ratio != 0.5 {
			t.Errorf("Expected ratio 0.5, got %v", test.Ratio)
		}
		if test.Ignored != nil {
			t.Errorf("Expected map to be left alone, got %v", test.Ignored)
		}
		if test.Bad != 0 {
			t.Errorf("Expected unparsable int to stay zero, got %d", test.Bad)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	t.Run("Load non-existent config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "non-existent-config.yaml"))
		if err != nil {
			t.Errorf("Expected no error for non-existent config file, got %v", err)
		}

		if cfg == nil || AppConfig == nil {
			t.Fatal("Expected config to be set with defaults")
		}

		if AppConfig.Preview.Engine != EngineGoldmark {
			t.Errorf("Expected default engine, got %q", AppConfig.Preview.Engine)
		}
	})

	t.Run("Load valid config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		configContent := `
editor:
  tab_width: 2
  word_wrap: false
preview:
  addr: "127.0.0.1:8765"
  debounce_ms: 150
  engine: mmark
images:
  dir_name: assets
drafts:
  backend: memory
  compression: gzip
logging:
  level: debug
`
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(configContent), 0o644); err != nil {
			t.Fatalf("Failed to write config content: %v", err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Expected no error loading valid config, got %v", err)
		}

		if cfg.Editor.TabWidth != 2 {
			t.Errorf("Expected tab width 2, got %d", cfg.Editor.TabWidth)
		}
		if cfg.Editor.WordWrap {
			t.Error("Expected word wrap to be disabled")
		}
		// Unset fields keep their defaults
		if !cfg.Editor.LineNumbers {
			t.Error("Expected line numbers default to survive a partial file")
		}
		if cfg.Preview.Addr != "127.0.0.1:8765" {
			t.Errorf("Expected addr '127.0.0.1:8765', got %q", cfg.Preview.Addr)
		}
		if cfg.Preview.Debounce() != 150*time.Millisecond {
			t.Errorf("Expected debounce 150ms, got %v", cfg.Preview.Debounce())
		}
		if cfg.Preview.Engine != EngineMmark {
			t.Errorf("Expected engine mmark, got %q", cfg.Preview.Engine)
		}
		if cfg.Images.DirName != "assets" {
			t.Errorf("Expected images dir 'assets', got %q", cfg.Images.DirName)
		}
		if cfg.Drafts.Backend != DraftsBackendMemory {
			t.Errorf("Expected memory drafts backend, got %q", cfg.Drafts.Backend)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Expected log level debug, got %q", cfg.Logging.Level)
		}
		if AppConfig != cfg {
			t.Error("Expected AppConfig to point at the loaded config")
		}
	})

	t.Run("Load invalid YAML", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("editor: [unclosed"), 0o644); err != nil {
			t.Fatalf("Failed to write config content: %v", err)
		}

		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("Expected error for invalid YAML")
		}
		if !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected parse error, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown engine", func(c *Config) { c.Preview.Engine = "markdig" }, "invalid preview engine"},
		{"unknown backend", func(c *Config) { c.Drafts.Backend = "s3" }, "invalid drafts backend"},
		{"unknown compression", func(c *Config) { c.Drafts.Compression = "lz4" }, "invalid drafts compression"},
		{"negative debounce", func(c *Config) { c.Preview.DebounceMS = -1 }, "invalid preview debounce"},
		{"zero tab width", func(c *Config) { c.Editor.TabWidth = 0 }, "invalid tab width"},
		{"nested images dir", func(c *Config) { c.Images.DirName = "a/b" }, "invalid images dir name"},
		{"empty images dir", func(c *Config) { c.Images.DirName = "" }, "invalid images dir name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPreviewDebounce(t *testing.T) {
	if got := (PreviewConfig{DebounceMS: 0}).Debounce(); got != DefaultPreviewDebounce {
		t.Errorf("Expected zero debounce to fall back to %v, got %v", DefaultPreviewDebounce, got)
	}
	if got := (PreviewConfig{DebounceMS: 50}).Debounce(); got != 50*time.Millisecond {
		t.Errorf("Expected 50ms, got %v", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != ConfigFileName {
		t.Errorf("Expected path ending in %q, got %q", ConfigFileName, path)
	}
}

func TestSliceDefaults(t *testing.T) {
	t.Run("Slice with whitespace handling", func(t *testing.T) {
		type TestStruct struct {
			Items []string `default:" item1 , item2 , item3 "`
		}

		test := &TestStruct{}
		applyDefaults(test)

		expected := []string{"item1", "item2", "item3"}
		if !reflect.DeepEqual(test.Items, expected) {
			t.Errorf("Expected trimmed items %v, got %v", expected, test.Items)
		}
	})

	t.Run("Non-empty slice should not be overwritten", func(t *testing.T) {
		type TestStruct struct {
			Items []string `default:"default1,default2"`
		}

		test := &TestStruct{Items: []string{"existing1", "existing2"}}
		applyDefaults(test)

		expected := []string{"existing1", "existing2"}
		if !reflect.DeepEqual(test.Items, expected) {
			t.Errorf("Expected existing items to be preserved %v, got %v", expected, test.Items)
		}
	})
}
