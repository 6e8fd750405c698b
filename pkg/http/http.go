package http

import (
	"net/http"
	"strings"
)

// HandleFileServer returns a handler that serves the UI's static assets
// with explicit content types for the file kinds the build emits.
func HandleFileServer(fs http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if idx := strings.Index(path, "?"); idx != -1 {
			path = path[:idx]
		}
		r.URL.Path = path

		switch {
		case strings.HasSuffix(path, ".js"):
			w.Header().Set("Content-Type", "application/javascript")
		case strings.HasSuffix(path, ".css"):
			w.Header().Set("Content-Type", "text/css")
		case strings.HasSuffix(path, ".html"):
			w.Header().Set("Content-Type", "text/html")
		}

		fs.ServeHTTP(w, r)
	}
}
