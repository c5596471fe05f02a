package dashboard

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed web
var webFS embed.FS

// Assets serves the embedded browser dashboard, a static page that reads
// GET /api/conversations and subscribes to /ws for live message events.
func Assets() http.Handler {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
