package config

import "regexp"

const (
	EngineGoldmark = "goldmark"
	EngineClassic  = "classic"
	EngineMmark    = "mmark"
)

var (
	// RegexCallout matches a "// <<1>>" callout in highlighted, HTML-escaped code.
	RegexCallout = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)
)
