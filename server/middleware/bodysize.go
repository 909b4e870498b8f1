package middleware

import (
	"net/http"

	"github.com/vidscribe/vidscribe/util"
)

const defaultMaxBodySize = 1 << 30 // 1GB

// BodySizeLimit returns middleware that restricts the request body to the given
// size string (e.g. "512MB", "2GB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"detail":"Request body too large"}`))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
