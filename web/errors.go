// ABOUTME: JSON error responses in the {"detail": "..."} shape used by every route.
// ABOUTME: Shared by the router fallbacks, the root page handler, and the static mount.
package web

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

// indexNotFoundBody is written verbatim when the index file is absent.
const indexNotFoundBody = `{"detail": "index.html not found"}`

// detailBodies holds the rendered bodies for every status the router emits.
var detailBodies = map[int][]byte{
	http.StatusNotFound:            mustDetailBody(http.StatusText(http.StatusNotFound)),
	http.StatusMethodNotAllowed:    mustDetailBody(http.StatusText(http.StatusMethodNotAllowed)),
	http.StatusInternalServerError: mustDetailBody(http.StatusText(http.StatusInternalServerError)),
}

// detailBody renders {"detail": <msg>} with the message JSON-escaped.
func detailBody(msg string) ([]byte, error) {
	quoted, err := sonic.ConfigStd.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding detail %q: %w", msg, err)
	}
	body := make([]byte, 0, len(quoted)+13)
	body = append(body, `{"detail": `...)
	body = append(body, quoted...)
	body = append(body, '}')
	return body, nil
}

func mustDetailBody(msg string) []byte {
	body, err := detailBody(msg)
	if err != nil {
		panic(err)
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	h := w.Header()
	h.Del("ETag")
	h.Del("Last-Modified")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(body)
}

// writeDetail writes the status text of status as the detail message.
// A status without a prepared body is reported as a 500.
func writeDetail(w http.ResponseWriter, status int) {
	body, ok := detailBodies[status]
	if !ok {
		status = http.StatusInternalServerError
		body = detailBodies[status]
	}
	writeJSON(w, status, body)
}

// statusError adapts writeDetail to the assets.ErrorHandler signature.
func statusError(w http.ResponseWriter, _ *http.Request, status int) {
	writeDetail(w, status)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeDetail(w, http.StatusNotFound)
}

// methodNotAllowed answers for both routes, which accept the same methods.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "GET, HEAD")
	writeDetail(w, http.StatusMethodNotAllowed)
}
