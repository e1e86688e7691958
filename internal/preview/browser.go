package preview

import (
	"os/exec"
	"runtime"
)

// OpenBrowser asks the desktop to open url. Failure is logged, not returned:
// the URL is also shown in the status bar.
func OpenBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		previewLogger.Warn().Err(err).Str("url", url).Msg("Could not open browser")
		return
	}
	go cmd.Wait()
}
