package httpclient

import (
	"io"
	"net/http"
)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// URL is the absolute request URL.
	URL string
	// Headers are request-specific headers (merged over client defaults).
	Headers map[string]string
	// Body is sent as-is. Requests with a body are never retried since the
	// reader cannot be replayed.
	Body io.Reader
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// FinalURL is the URL after redirects.
	FinalURL string
}

// StreamResponse wraps a response whose body is still on the wire.
type StreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	// FinalURL is the URL after redirects.
	FinalURL string
}

// ContentType returns the response Content-Type header.
func (r *StreamResponse) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Close releases the underlying connection.
func (r *StreamResponse) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}
