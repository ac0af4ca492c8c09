package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/a3tai/w2-intake/internal/config"
	"github.com/a3tai/w2-intake/internal/logging"
	"github.com/a3tai/w2-intake/internal/pipeline"
	"github.com/a3tai/w2-intake/internal/server"
	"github.com/a3tai/w2-intake/internal/store"
	"github.com/a3tai/w2-intake/internal/upstream"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := logging.New(cfg.LogLevel)

	if cfg.IsDebug() {
		logger.Debug().Str("config", cfg.String()).Msg("starting with configuration")
	}

	// Open the submission history store when configured
	var history *store.Store
	if cfg.HistoryEnabled() {
		history, err = store.Open(cfg.StorePath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open submission store")
		}
		defer history.Close()
	}

	// Select the upstream backend; production and local wiring differ
	// only here.
	var submitter upstream.Submitter
	var mockAPI *upstream.MockAPI
	if cfg.IsStubUpstream() {
		submitter = upstream.NewStubSubmitter(logger)
		mockAPI = upstream.NewMockAPI(cfg.APISecret, logger)
	} else {
		submitter = upstream.NewHTTPSubmitter(cfg.ReportURL, cfg.UploadURL, cfg.APISecret, cfg.UpstreamTimeout, logger)
	}

	var recorder pipeline.Recorder
	if history != nil {
		recorder = history
	}

	p := pipeline.New(cfg, submitter, recorder, logger)
	srv := server.New(cfg, p, history, mockAPI, logger)

	runServer(srv, logger)
}

// runServer starts the HTTP server and handles graceful shutdown on
// SIGINT/SIGTERM.
func runServer(srv *server.Server, logger *log.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Start()
	}()

	select {
	case sig := <-signalCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("server exited with error")
			os.Exit(1)
		}
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("W-2 Intake Server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
