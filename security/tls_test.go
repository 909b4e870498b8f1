package security

import (
	"crypto/tls"
	"testing"

	"github.com/vidscribe/vidscribe/security/tlstest"
)

func TestClient_NothingConfigured(t *testing.T) {
	for _, cfg := range []*TLSConfig{nil, {}} {
		got, err := cfg.Client()
		if err != nil || got != nil {
			t.Errorf("Client() = %v, %v; want nil, nil", got, err)
		}
	}
}

func TestClient_Settings(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := &TLSConfig{
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "whisper.internal",
		MinVersion: tls.VersionTLS13,
	}
	got, err := cfg.Client()
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	if got.RootCAs == nil {
		t.Error("RootCAs not set")
	}
	if len(got.Certificates) != 1 {
		t.Errorf("certificates = %d", len(got.Certificates))
	}
	if got.ServerName != "whisper.internal" || got.MinVersion != tls.VersionTLS13 {
		t.Errorf("unexpected config: server name %q, min version %d", got.ServerName, got.MinVersion)
	}
}

func TestClient_SkipVerifyDefaultsToTLS12(t *testing.T) {
	got, err := (&TLSConfig{SkipVerify: true}).Client()
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	if !got.InsecureSkipVerify || got.MinVersion != tls.VersionTLS12 {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestClient_BadCA(t *testing.T) {
	if _, err := (&TLSConfig{CAFile: "/nonexistent/ca.pem"}).Client(); err == nil {
		t.Error("expected error for missing CA file")
	}
	if _, err := (&TLSConfig{CAFile: tlstest.WriteInvalidPEM(t)}).Client(); err == nil {
		t.Error("expected error for invalid CA content")
	}
}

func TestServer(t *testing.T) {
	certs := tlstest.Generate(t)

	plain, err := (&TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}).Server()
	if err != nil {
		t.Fatalf("Server: %v", err)
	}
	if len(plain.Certificates) != 1 || plain.ClientAuth != tls.NoClientCert {
		t.Errorf("unexpected server config %+v", plain)
	}

	mutual, err := (&TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile, CAFile: certs.CAFile}).Server()
	if err != nil {
		t.Fatalf("Server: %v", err)
	}
	if mutual.ClientAuth != tls.RequireAndVerifyClientCert || mutual.ClientCAs == nil {
		t.Error("CA file must enable client verification")
	}

	if _, err := (&TLSConfig{CAFile: certs.CAFile}).Server(); err == nil {
		t.Error("expected error without a certificate pair")
	}
}

func TestValidate(t *testing.T) {
	if err := (*TLSConfig)(nil).Validate(); err != nil {
		t.Errorf("nil: %v", err)
	}
	if err := (&TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"}).Validate(); err != nil {
		t.Errorf("pair: %v", err)
	}
	if err := (&TLSConfig{CertFile: "c.pem"}).Validate(); err == nil {
		t.Error("expected error for cert without key")
	}
}
