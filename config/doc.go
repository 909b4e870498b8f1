// Package config loads service configuration from a config.yml file, an
// optional .env file and the process environment.
//
// Environment variables override file values. Nested keys are matched by
// splitting on underscores, so SERVER_PORT sets server.port and
// TRANSCRIPTION_MAX_CONCURRENT sets transcription.max_concurrent.
//
//	var cfg AppConfig
//	if err := config.Load("vidscribe", &cfg); err != nil {
//	    return err
//	}
package config
