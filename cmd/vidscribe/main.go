// Command vidscribe serves the video transcription HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vidscribe/vidscribe/api"
	"github.com/vidscribe/vidscribe/bootstrap"
	"github.com/vidscribe/vidscribe/component"
	"github.com/vidscribe/vidscribe/config"
	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/media"
	"github.com/vidscribe/vidscribe/observability"
	"github.com/vidscribe/vidscribe/server"
	"github.com/vidscribe/vidscribe/storage"
	_ "github.com/vidscribe/vidscribe/storage/local"
	"github.com/vidscribe/vidscribe/transcription"
	"github.com/vidscribe/vidscribe/transcription/whisper"
	"github.com/vidscribe/vidscribe/transcription/whispercli"
	"github.com/vidscribe/vidscribe/upload"
	"github.com/vidscribe/vidscribe/version"
)

const serviceName = "vidscribe"

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env")
	flag.Parse()

	if err := run(context.Background(), *configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string) error {
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &AppConfig{}
	if err := config.Load(serviceName, cfg, opts...); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Short()
	}
	cfg.ApplyDefaults()

	app, err := bootstrap.NewApp(cfg,
		bootstrap.WithGracefulTimeout(time.Duration(cfg.Server.ShutdownTimeout)*time.Second),
	)
	if err != nil {
		return err
	}
	log := app.Logger

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.OnStop(func(ctx context.Context) error { return shutdownTelemetry(ctx) })

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	registry := transcription.NewRegistry()
	registry.RegisterFactory(transcription.BackendWhisper, whisper.Factory())
	registry.RegisterFactory(transcription.BackendWhisperCLI, whispercli.Factory())
	backend, err := registry.GetOrCreate(cfg.Transcription.Backend, cfg.Transcription.ProviderConfig())
	if err != nil {
		return fmt.Errorf("transcription backend %q: %w", cfg.Transcription.Backend, err)
	}
	transcriber := transcription.NewAdapter(backend, cfg.Transcription, log, metrics)

	fetcher, err := media.NewFetcher(cfg.Fetch, log)
	if err != nil {
		return err
	}

	workdir := storage.NewComponent(cfg.Storage, log)
	receiver := upload.NewReceiver(workdir, cfg.Upload, log, metrics)

	srv := server.New(cfg.Server, log, metrics)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
	api.NewHandler(fetcher, receiver, transcriber, cfg.API, log).Register(srv.GinEngine())

	for _, c := range []component.Component{
		workdir,
		transcription.NewComponent(transcriber, cfg.Transcription, log),
		server.NewComponent(srv),
	} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	app.OnStart(func(context.Context) error {
		log.Info("listening", logger.Fields("addr", srv.Addr(), "tls", cfg.Server.TLS.HasCertificate()))
		return nil
	})
	app.OnReady(func(context.Context) error {
		log.Info("accepting transcription requests", logger.Fields(
			"backend", cfg.Transcription.Backend,
			"model", cfg.Transcription.Model,
			"workdir", cfg.Storage.BasePath,
			"max_concurrent", cfg.Transcription.MaxConcurrent,
		))
		return nil
	})
	return app.Run(ctx)
}
