package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// webFS holds the embedded dashboard assets. The main package injects it
// through SetWebUI before the server is constructed.
var webFS fs.FS

// SetWebUI installs the embedded filesystem the dashboard is served from.
func SetWebUI(fsys fs.FS) {
	webFS = fsys
}

// spaHandler serves the dashboard with single-page-app routing: any path
// that does not name a real asset falls back to index.html.
func spaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if webFS == nil {
			http.Error(w, "dashboard not embedded in this build", http.StatusNotFound)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if f, err := webFS.Open(path); err != nil {
			path = "index.html"
		} else {
			f.Close()
		}

		http.ServeFileFS(w, r, webFS, path)
	}
}
