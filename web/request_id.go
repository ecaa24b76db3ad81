// ABOUTME: Request ID middleware that tags each request with a ULID and echoes it in X-Request-Id.
// ABOUTME: Stores the ID under chi's RequestIDKey so middleware.GetReqID works downstream.
package web

import (
	"context"
	"crypto/rand"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// maxInboundRequestID bounds client-supplied IDs so they cannot bloat logs.
const maxInboundRequestID = 128

// newRequestID generates a new ULID using crypto/rand entropy.
func newRequestID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxInboundRequestID || !printableASCII(id) {
			id = newRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
