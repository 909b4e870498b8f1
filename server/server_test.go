package server

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vidscribe/vidscribe/errors"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/security"
	"github.com/vidscribe/vidscribe/security/tlstest"
	"github.com/vidscribe/vidscribe/server/middleware"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Host != "0.0.0.0" || cfg.Port != 8000 {
		t.Errorf("expected 0.0.0.0:8000, got %s:%d", cfg.Host, cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected port validation error")
	}
}

func TestNew_SlowUploadsNotCutOff(t *testing.T) {
	srv := New(Config{}, logger.NewNop(), nil)
	if got := srv.httpServer.ReadHeaderTimeout; got != 30*time.Second {
		t.Errorf("ReadHeaderTimeout = %v, want 30s", got)
	}
	if got := srv.httpServer.ReadTimeout; got != 0 {
		t.Errorf("ReadTimeout = %v, want unbounded", got)
	}
	if got := srv.config.ShutdownTimeout; got != 15 {
		t.Errorf("ShutdownTimeout = %d, want 15", got)
	}
}

func TestHandler_AppliesMiddlewareAndRoutes(t *testing.T) {
	srv := New(Config{}, logger.NewNop(), nil)
	srv.ApplyDefaults("vidscribe", nil)
	srv.GinEngine().GET("/boom", func(c *gin.Context) { RespondWithDetail(c, apperrors.NoMediaFound("http://x")) })

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/boom")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if resp.Header.Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request id header")
	}
	if string(body) != `{"detail":"No video found at the specified URL","code":"NO_MEDIA_FOUND"}` {
		t.Errorf("unexpected body %s", body)
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected healthy, got %d", resp.StatusCode)
	}
}

func TestStartStop(t *testing.T) {
	srv := New(Config{Host: "127.0.0.1", Port: 0}, logger.NewNop(), nil)
	srv.config.Port = 0
	srv.httpServer.Addr = "127.0.0.1:0"
	srv.ApplyDefaults("vidscribe", nil)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/info")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if err := srv.Stop(context.Background()); err != nil {
		t.Errorf("stop: %v", err)
	}
}

func TestStartStop_TLS(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := New(Config{
		Host: "127.0.0.1",
		TLS:  security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile},
	}, logger.NewNop(), nil)
	srv.httpServer.Addr = "127.0.0.1:0"
	srv.ApplyDefaults("vidscribe", nil)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = srv.Stop(context.Background()) }()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: certs.Pool, MinVersion: tls.VersionTLS12},
	}}
	resp, err := client.Get("https://" + srv.Addr() + "/info")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestUnknownRoutes(t *testing.T) {
	srv := New(Config{}, logger.NewNop(), nil)
	srv.ApplyDefaults("vidscribe", nil)
	srv.GinEngine().POST("/transcribe/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	tests := []struct {
		method, path string
		wantCode     int
		wantDetail   string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, `"detail":"Not Found"`},
		{http.MethodGet, "/transcribe/", http.StatusMethodNotAllowed, `"detail":"Method Not Allowed"`},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, http.NoBody))
		if rr.Code != tt.wantCode {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.wantCode, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), tt.wantDetail) {
			t.Errorf("%s %s: body %s", tt.method, tt.path, rr.Body.String())
		}
	}
}
