// Package security builds TLS configurations from file-based settings. The
// same TLSConfig section serves the HTTP listener (certificate and key) and
// outbound calls to the transcription sidecar (CA bundle, client
// certificate, server name).
//
//	tlsCfg, err := cfg.Client()
//	srvCfg, err := cfg.Server()
package security
