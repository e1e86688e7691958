// Package routes defines the preview server's HTTP paths.
package routes

const (
	// Root serves the shell page that frames the preview.
	RootPath = "/"

	// PreviewPath serves the latest rendered document. Anything below it is
	// a file next to the document, so relative image references resolve.
	PreviewPath = "/preview/"

	// SSE
	SSEPath = "/sse"

	HealthPath = "/healthz"
	StaticPath = "/static/"
)
