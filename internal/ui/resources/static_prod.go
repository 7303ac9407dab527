//go:build !dev

package resources

import (
	"bytes"
	"embed"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed static/*
var staticFS embed.FS

// Handler returns an HTTP handler for serving static files.
// In production mode, files are embedded in the binary and scripts and
// stylesheets are minified once at startup.
func Handler() http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	fileServer := http.FileServer(http.FS(fsys))
	minified := minifyAll(fsys)
	started := time.Now()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Cache embedded static assets for 1 year (they never change in prod)
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		name := strings.TrimPrefix(r.URL.Path, "/static/")
		if body, ok := minified[name]; ok {
			if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
				w.Header().Set("Content-Type", ct)
			}
			http.ServeContent(w, r, name, started, bytes.NewReader(body))
			return
		}
		http.StripPrefix("/static/", fileServer).ServeHTTP(w, r)
	})
}

func minifyAll(fsys fs.FS) map[string][]byte {
	out := make(map[string][]byte)
	_ = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := path.Ext(name)
		if ext != ".js" && ext != ".css" {
			return nil
		}
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil
		}
		min, err := Minify(name, src)
		if err != nil {
			slog.Warn("serving unminified asset", "file", name, "error", err)
			return nil
		}
		out[name] = min
		return nil
	})
	return out
}

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}
