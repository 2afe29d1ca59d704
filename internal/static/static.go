// Package static serves the single page application frontend.
package static

import (
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/wirescope/wirescope/internal/model"
)

// immutableCacheControl is the Cache-Control we use for hashed assets.
const immutableCacheControl = "public, max-age=31536000, immutable"

// Handler serves the files of a SPA build directory. Unknown paths
// without an extension are client side routes and get index.html.
type Handler struct {
	// FS is the MANDATORY filesystem containing the build.
	FS fs.FS

	// Logger is the MANDATORY logger.
	Logger model.Logger
}

// NewHandler creates a Handler serving the given directory.
func NewHandler(dir string, logger model.Logger) *Handler {
	return &Handler{FS: os.DirFS(dir), Logger: logger}
}

var _ http.Handler = &Handler{}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	urlPath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if urlPath == "" {
		urlPath = "index.html"
	}
	for _, candidate := range candidates(urlPath) {
		content, err := fs.ReadFile(h.FS, candidate)
		if err != nil {
			continue
		}
		h.Logger.Debugf("static: %s => %s", r.URL.Path, candidate)
		serveContent(w, r, candidate, content)
		return
	}
	http.NotFound(w, r)
}

// candidates returns the files to try, in order, for the given path.
func candidates(urlPath string) []string {
	var out []string
	out = append(out, urlPath)
	if !strings.Contains(path.Base(urlPath), ".") {
		out = append(out, "index.html")
	}
	out = append(out, urlPath+".html")
	out = append(out, path.Join(urlPath, "index.html"))
	out = append(out, "index.html")
	return out
}

func serveContent(w http.ResponseWriter, r *http.Request, name string, content []byte) {
	mimeType := mime.TypeByExtension(path.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	if strings.HasPrefix(name, "assets/") {
		w.Header().Set("Cache-Control", immutableCacheControl)
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(content)
	}
}
