package config

import "time"

// Defaults mirrored from the struct tags in config.go; testdata/defaults.yaml must agree.
const (
	DefaultVersion            = "1"
	DefaultPreviewAddr        = "127.0.0.1:0"
	DefaultPreviewEngine      = EngineGoldmark
	DefaultPreviewDebounceMS  = 300
	DefaultPreviewDebounce    = DefaultPreviewDebounceMS * time.Millisecond
	DefaultImagesDirName      = "images"
	DefaultDraftsBackend      = DraftsBackendSQLite
	DefaultDraftsCompression  = CompressionZstd
	DefaultEditorTabWidth     = 4
	DefaultEditorWordWrap     = true
	DefaultPreviewVisible     = true
	DefaultLoggingLevel       = "info"
	DefaultPreviewOpenBrowser = false
)

const (
	DraftsBackendSQLite = "sqlite"
	DraftsBackendMemory = "memory"

	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
	CompressionNone = "none"
)
