// Package static maps untrusted request paths onto files under a single
// document root.
package static

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rjoostens/basalt/http"
)

const indexPage = "/index.html"

// Resolver serves files from one canonical root directory. The tree under
// it is treated as read-only.
type Resolver struct {
	root string
}

// NewResolver canonicalizes root once; every containment check later runs
// against this absolute form.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("static: canonicalize root %q: %w", root, err)
	}
	return &Resolver{root: abs}, nil
}

// Resolve maps a request path to a 200 response streaming the file, or
// fails with http.ErrNotFound. Traversal outside the root, missing files,
// unreadable files and directories are indistinguishable to the caller.
func (r *Resolver) Resolve(path string) (http.Response, error) {
	if path == "" || path == "/" {
		path = indexPage
	}

	// Join normalizes its result, collapsing "." and ".." segments; the
	// containment check must run on this normalized form, never on the
	// raw input.
	candidate := filepath.Join(r.root, strings.TrimLeft(path, "/"))
	if !strings.HasPrefix(candidate, r.root) {
		return http.Response{}, fmt.Errorf("%w: %s escapes the document root", http.ErrNotFound, path)
	}

	file, err := os.Open(candidate)
	if err != nil {
		return http.Response{}, fmt.Errorf("%w: %s", http.ErrNotFound, path)
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return http.Response{}, fmt.Errorf("%w: %s", http.ErrNotFound, path)
	}

	resp := http.Response{
		Status:        http.StatusOK,
		Headers:       http.Headers{},
		ContentLength: info.Size(),
		Body:          file,
	}
	resp.Headers.Add("content-type", contentType(candidate))
	return resp, nil
}

// contentType infers the media type from the file extension; the platform
// table appends a charset for text types on its own. Extensions it does
// not know fall back to content sniffing, then to a generic binary type.
func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	if detected, err := mimetype.DetectFile(path); err == nil {
		return detected.String()
	}
	return "application/octet-stream"
}
