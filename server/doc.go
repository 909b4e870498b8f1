// Package server provides the HTTP server: a Gin engine behind an h2c
// handler, wrapped by the middleware stack in server/middleware, with
// /health and /info endpoints.
//
//	srv := server.New(cfg, log, metrics)
//	srv.ApplyDefaults("vidscribe", registry.HealthAll)
//	srv.GinEngine().POST("/transcribe/", h.Transcribe)
//	registry.Register(server.NewComponent(srv))
package server
