// ABOUTME: Root page handler that returns the index file from disk on every request.
// ABOUTME: Maps a missing file to 404 and any other filesystem failure to 500.
package web

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/2389-research/sketchpad/assets"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ErrIndexNotFound is returned when the index file does not exist at request time.
var ErrIndexNotFound = errors.New("index.html not found")

const htmlContentType = "text/html; charset=utf-8"

// openIndex opens path and checks that it is a regular file. The caller owns the returned file.
func openIndex(path string) (*os.File, fs.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, nil, fmt.Errorf("opening index: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat index: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("index %s is not a regular file", path)
	}
	return f, info, nil
}

// handleIndex serves the index file bytes unmodified.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, info, err := openIndex(s.indexFile)
	if err != nil {
		if errors.Is(err, ErrIndexNotFound) {
			writeJSON(w, http.StatusNotFound, []byte(indexNotFoundBody))
			return
		}
		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"index":      s.indexFile,
		}).WithError(err).Error("serving index failed")
		writeDetail(w, http.StatusInternalServerError)
		return
	}
	defer f.Close()

	// The page is always sent whole.
	if r.Header.Get("Range") != "" {
		r = r.Clone(r.Context())
		r.Header.Del("Range")
		r.Header.Del("If-Range")
	}
	assets.ServeFile(w, r, info, f, htmlContentType)
}
