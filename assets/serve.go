// ABOUTME: Shared file response writer: content type inference, ETag, and conditional requests.
// ABOUTME: Used by both the static mount and the root page handler.
package assets

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ServeFile writes content as the response body. When contentType is empty
// it is inferred from the file extension, falling back to content sniffing.
// Range, HEAD, If-None-Match, and If-Modified-Since are handled by http.ServeContent.
func ServeFile(w http.ResponseWriter, r *http.Request, info fs.FileInfo, content io.ReadSeeker, contentType string) error {
	if contentType == "" {
		ct, err := DetectContentType(info.Name(), content)
		if err != nil {
			return err
		}
		contentType = ct
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("ETag", ETag(info))
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return nil
}

// DetectContentType returns the MIME type for name, consulting the extension
// table first and sniffing content otherwise. content is rewound before returning.
func DetectContentType(name string, content io.ReadSeeker) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct, nil
	}

	mt, err := mimetype.DetectReader(content)
	if _, seekErr := content.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("rewinding %s: %w", name, seekErr)
	}
	if err != nil {
		return "", fmt.Errorf("sniffing %s: %w", name, err)
	}
	return mt.String(), nil
}

// ETag derives a strong validator from modification time and size, so it
// changes whenever the file is rewritten without reading the file body.
// The digested string is "<seconds>-<size>" with seconds as a float that
// always carries a fractional part, e.g. "1700000000.0-42".
func ETag(info fs.FileInfo) string {
	sum := md5.Sum([]byte(etagBase(info)))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func etagBase(info fs.FileInfo) string {
	mtime := strconv.FormatFloat(float64(info.ModTime().UnixNano())/1e9, 'f', -1, 64)
	if !strings.ContainsRune(mtime, '.') {
		mtime += ".0"
	}
	return mtime + "-" + strconv.FormatInt(info.Size(), 10)
}
