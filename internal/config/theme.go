package config

const (
	// The preview is always light, whatever the terminal or OS theme is.
	PreviewColorScheme string = "light"

	DefaultLightSyntaxTheme string = "github"
)
