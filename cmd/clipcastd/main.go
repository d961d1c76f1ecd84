package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/snarg/clipcast/internal/api"
	"github.com/snarg/clipcast/internal/config"
	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/metrics"
	"github.com/snarg/clipcast/internal/pronounce"
	"github.com/snarg/clipcast/internal/transcode"
)

var version = "dev"

func main() {
	startTime := time.Now()

	// Flags
	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file")
	flag.StringVar(&overrides.HTTPAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.ClipDir, "clip-dir", "", "clip directory (overrides CLIP_DIR)")
	flag.Parse()

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("clipcastd starting")

	// Clip store
	if err := os.MkdirAll(cfg.ClipDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ClipDir).Msg("failed to create clip directory")
	}
	prometheus.MustRegister(metrics.NewCollector(media.DirStats{Dir: cfg.ClipDir}))

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Provider dependencies
	fetchLog := log.With().Str("component", "fetch").Logger()
	fetcher := fetch.NewFetcher(cfg.UserAgent, cfg.FetchTimeout, cfg.FetchRate, fetchLog)

	convLog := log.With().Str("component", "transcode").Logger()
	converter := transcode.NewConverter(cfg.SoxBin, convLog)
	if !converter.Available() {
		log.Warn().Str("bin", cfg.SoxBin).Msg("audio converter not found, non-mp3 sources will fail")
	}

	var yandex *pronounce.YandexSynth
	if cfg.YandexAPIKey != "" && cfg.YandexFolderID != "" {
		yandex, err = pronounce.DialYandex(pronounce.YandexConfig{
			APIKey:   cfg.YandexAPIKey,
			FolderID: cfg.YandexFolderID,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to dial speechkit")
		}
		defer yandex.Close()
	}

	deps := pronounce.Deps{
		Fetcher:    fetcher,
		Converter:  converter,
		Yandex:     yandex,
		ScratchDir: cfg.ScratchDir,
		Log:        log,
	}
	catalog := pronounce.NewCatalog(deps)

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, catalog, deps, version, startTime, httpLog)

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("clipcastd stopped")
}
