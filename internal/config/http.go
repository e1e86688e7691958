package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html; charset=utf-8"
	CTypeJS   = "text/javascript; charset=utf-8"
	CTypeText = "text/plain; charset=utf-8"
	CTypeSSE  = "text/event-stream"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	// EventReload is sent to every preview client after a new page is displayed.
	EventReload = "reload"
)
