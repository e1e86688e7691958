package config

const (
	AppName        = "markpad"
	ConfigFileName = "config.yaml"
	LogFileName    = "markpad.log"
	DraftsFileName = "drafts.db"

	//? These paths must match the paths in the embed directives

	TemplatesLocalDir = "templates"
	StaticLocalDir    = "static"

	TemplatePage  = "page.html"
	TemplateShell = "shell.html"
)
