package middleware

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticFileServer serves the built frontend from dir. Paths that do not
// name a file fall back to index.html so client-side routes resolve.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			http.ServeFile(w, r, name)
			return
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	})
}
