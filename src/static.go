package game

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// StaticFileServer serves the browser client from dir. Paths that do not name
// an existing file fall back to fallbackPath so client-side routes resolve.
func StaticFileServer(dir string, fallbackPath string) (http.Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static directory %s: not a directory", dir)
	}

	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(filepath.Join(dir, filepath.Clean("/"+r.URL.Path))); err == nil {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, fallbackPath))
	}), nil
}
