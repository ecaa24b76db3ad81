// ABOUTME: Static asset mount that serves regular files from a directory under a URL prefix.
// ABOUTME: Rejects traversal, escaping symlinks, and directory requests with 404 and never renders listings.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrorHandler writes an error response with the given status code.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, status int)

// Option configures optional Mount behavior.
type Option func(*Mount)

// WithErrorHandler replaces the plain-text error writer.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Mount) {
		m.onError = h
	}
}

// WithLogger sets the logger used for unexpected filesystem errors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Mount) {
		m.log = log
	}
}

// Mount is an http.Handler serving files from a single directory. The request
// path it sees must already have the mount prefix stripped.
type Mount struct {
	root    string
	fsys    fs.FS
	closer  io.Closer
	onError ErrorHandler
	log     logrus.FieldLogger
}

// NewMount checks that dir is an existing directory and returns a Mount over it.
// Lookups go through an os.Root, so symlinks resolving outside dir are refused.
// The directory is not watched; files added or removed later are picked up per request.
func NewMount(dir string, opts ...Option) (*Mount, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static directory %q is not a directory", dir)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening static directory %q: %w", dir, err)
	}
	m := NewMountFS(dir, root.FS(), opts...)
	m.closer = root
	return m, nil
}

// NewMountFS returns a Mount over an arbitrary filesystem. root is used only in log messages.
func NewMountFS(root string, fsys fs.FS, opts ...Option) *Mount {
	m := &Mount{
		root:    root,
		fsys:    fsys,
		onError: plainError,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the directory name the mount was created with.
func (m *Mount) Root() string {
	return m.root
}

// Close releases the directory handle opened by NewMount. Mounts built with
// NewMountFS have nothing to release.
func (m *Mount) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

func (m *Mount) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		m.onError(w, r, http.StatusMethodNotAllowed)
		return
	}

	name, ok := cleanName(r.URL.Path)
	if !ok {
		m.onError(w, r, http.StatusNotFound)
		return
	}

	f, err := m.fsys.Open(name)
	if err != nil {
		// Anything but a permission failure means the name does not resolve to
		// a file inside the root, which includes symlinks that escape it.
		if errors.Is(err, fs.ErrPermission) {
			m.fail(w, r, name, err)
			return
		}
		m.log.WithFields(logrus.Fields{
			"root": m.root,
			"file": name,
		}).WithError(err).Debug("static asset not resolvable")
		m.onError(w, r, http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		m.fail(w, r, name, err)
		return
	}
	if !info.Mode().IsRegular() {
		m.onError(w, r, http.StatusNotFound)
		return
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		m.fail(w, r, name, fmt.Errorf("file does not support seeking"))
		return
	}
	if err := ServeFile(w, r, info, content, ""); err != nil {
		m.fail(w, r, name, err)
	}
}

func (m *Mount) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	m.log.WithFields(logrus.Fields{
		"root": m.root,
		"file": name,
	}).WithError(err).Error("static asset read failed")
	m.onError(w, r, http.StatusInternalServerError)
}

// cleanName converts a prefix-stripped URL path into an fs.FS name. It
// reports false for empty paths and anything fs.ValidPath rejects, which
// covers "..", empty segments, and trailing slashes.
func cleanName(urlPath string) (string, bool) {
	name := strings.TrimPrefix(urlPath, "/")
	if name == "" || strings.Contains(name, "\\") {
		return "", false
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

func plainError(w http.ResponseWriter, _ *http.Request, status int) {
	http.Error(w, http.StatusText(status), status)
}
