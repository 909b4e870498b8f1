package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/httpclient"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/observability"
)

// ReadError marks a failure while reading media bytes off the wire, as
// opposed to a failure writing them somewhere. Timeout is set when the
// download deadline expired mid-stream.
type ReadError struct {
	Err     error
	Timeout bool
}

func (e *ReadError) Error() string { return "read media: " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

type bodyReader struct {
	ctx context.Context
	r   io.Reader
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		err = &ReadError{Err: err, Timeout: errors.Is(b.ctx.Err(), context.DeadlineExceeded)}
	}
	return n, err
}

// Media is a video stream on the wire. Close must be called.
type Media struct {
	// Body yields the media bytes. Read failures are *ReadError.
	Body io.Reader
	// ContentType is the media response Content-Type, if any.
	ContentType string
	// URL is the final media URL after page resolution and redirects.
	URL string

	closer io.Closer
	cancel context.CancelFunc
}

// Close releases the connection and the download deadline.
func (m *Media) Close() error {
	defer m.cancel()
	return m.closer.Close()
}

// Fetcher downloads videos referenced by URL.
type Fetcher struct {
	client *httpclient.Client
	cfg    Config
	log    *logger.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config, log *logger.Logger) (*Fetcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	retry := httpclient.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxAttempts

	client, err := httpclient.New(httpclient.Config{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Retry:     retry,
	})
	if err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}
	return &Fetcher{client: client, cfg: cfg, log: log.WithComponent("media")}, nil
}

// Fetch resolves rawURL to a media stream. Failures are *errors.AppError
// with code DOWNLOAD_FAILED, NO_MEDIA_FOUND or TIMEOUT.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Media, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanFetch)
	observability.SetSpanAttribute(ctx, observability.AttrURL, rawURL)

	m, err := f.fetch(ctx, rawURL)
	observability.EndSpan(span, err)
	if err != nil {
		f.log.WithContext(ctx).Warn("fetch failed", logger.Fields(logger.FieldURL, rawURL, logger.FieldError, err.Error()))
		return nil, err
	}
	f.log.WithContext(ctx).Debug("media located", logger.Fields(logger.FieldURL, rawURL, "media_url", m.URL))
	return m, nil
}

func (f *Fetcher) fetch(parent context.Context, rawURL string) (*Media, error) {
	pageURL, err := parseHTTPURL(rawURL)
	if err != nil {
		return nil, apperrors.DownloadFailed(err)
	}

	ctx, cancel := context.WithTimeout(parent, f.cfg.Timeout)

	resp, err := f.get(ctx, pageURL.String())
	if err != nil {
		cancel()
		return nil, fetchError(parent, err)
	}
	if !resp.html {
		return resp.media(ctx, cancel), nil
	}

	src, ok, err := findVideoSource(io.LimitReader(resp.body, f.cfg.MaxPageSize))
	_ = resp.Close()
	if err != nil {
		cancel()
		return nil, apperrors.DownloadFailed(fmt.Errorf("parse page: %w", err))
	}
	if !ok {
		cancel()
		return nil, apperrors.NoMediaFound(rawURL)
	}

	mediaURL, err := resolve(resp.finalURL, src)
	if err != nil {
		cancel()
		return nil, apperrors.DownloadFailed(err)
	}

	inner, err := f.get(ctx, mediaURL)
	if err != nil {
		cancel()
		return nil, fetchError(parent, err)
	}
	if inner.html {
		_ = inner.Close()
		cancel()
		return nil, apperrors.NoMediaFound(rawURL)
	}
	return inner.media(ctx, cancel), nil
}

// fetchError maps a client failure to DOWNLOAD_FAILED, or to TIMEOUT when
// the download deadline expired. A caller that went away is not a timeout.
func fetchError(parent context.Context, err error) *apperrors.AppError {
	timedOut := httpclient.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded)
	if timedOut && !errors.Is(parent.Err(), context.Canceled) {
		return apperrors.Timeout("download").WithCause(err)
	}
	return apperrors.DownloadFailed(err)
}

type response struct {
	body        *bufio.Reader
	closer      io.Closer
	contentType string
	finalURL    string
	html        bool
}

func (r *response) Close() error { return r.closer.Close() }

func (r *response) media(ctx context.Context, cancel context.CancelFunc) *Media {
	return &Media{
		Body:        &bodyReader{ctx: ctx, r: r.body},
		ContentType: r.contentType,
		URL:         r.finalURL,
		closer:      r.closer,
		cancel:      cancel,
	}
}

func (f *Fetcher) get(ctx context.Context, target string) (*response, error) {
	stream, err := f.client.DoStream(ctx, httpclient.Request{Method: http.MethodGet, URL: target})
	if err != nil {
		return nil, err
	}
	r := &response{
		body:        bufio.NewReaderSize(stream.Body, 512),
		closer:      stream,
		contentType: stream.ContentType(),
		finalURL:    stream.FinalURL,
	}
	r.html = isHTML(r.contentType, r.body)
	return r, nil
}

// isHTML trusts an explicit Content-Type and sniffs the body otherwise.
func isHTML(contentType string, body *bufio.Reader) bool {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && mediaType != "application/octet-stream" {
			return mediaType == "text/html" || mediaType == "application/xhtml+xml"
		}
	}
	head, _ := body.Peek(512)
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	return sniffed == "text/html"
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return u, nil
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid video src %q: %w", ref, err)
	}
	u, err := parseHTTPURL(b.ResolveReference(r).String())
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
