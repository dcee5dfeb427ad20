// Command jobtracker runs the job-application tracking service: it
// resolves inbound job events against the durable ledger, keeps the
// bounded in-process cache warm, and pushes live updates to connected
// clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/job-tracker/internal/api"
	"github.com/nhle/job-tracker/internal/backoff"
	"github.com/nhle/job-tracker/internal/cache"
	"github.com/nhle/job-tracker/internal/model"
	"github.com/nhle/job-tracker/internal/notify"
	"github.com/nhle/job-tracker/internal/realtime"
	"github.com/nhle/job-tracker/internal/refresh"
	"github.com/nhle/job-tracker/internal/resolver"
	"github.com/nhle/job-tracker/internal/source"
	"github.com/nhle/job-tracker/internal/store"
	syncpkg "github.com/nhle/job-tracker/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "jobtracker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	c := cache.New(cfg.Cache.MaxSize)
	registry := realtime.NewRegistry(logger)

	res := resolver.New(
		st,
		c,
		notify.NewDiscordClient(cfg.Notify.WebhookPrefix),
		notify.NewBotClient(cfg.Notify.BotURL, cfg.Notify.BotSecret),
		notify.NewStoreArchiver(),
		registry,
		logger,
		cfg.Batch.ChunkSize,
	)

	policy := backoff.Policy{
		MaxAttempts: cfg.Refresh.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Refresh.BaseDelayMillis) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Refresh.MaxDelayMillis) * time.Millisecond,
		Jitter:      true,
	}
	refresher := refresh.New(
		c,
		st,
		source.NewSynthetic(),
		res,
		policy,
		time.Duration(cfg.Cache.ExpirationMinutes)*time.Minute,
		logger,
	)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	cleaner := syncpkg.NewCleaner(
		st,
		syncpkg.DefaultCleanupInterval,
		syncpkg.DefaultRetention,
		syncpkg.DefaultTestUserPrefix,
		logger,
	)
	go cleaner.Run(bgCtx)

	ws := realtime.NewHandler(registry, c, func(userID string, isTest bool) {
		// Websocket refresh is bounded so a slow storage layer cannot
		// stall the register handshake past the client's patience.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := refresher.RefreshIfNeeded(ctx, userID, isTest); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("refresh on connect failed")
		}
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      api.NewServer(c, res, refresher, ws, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.ListenAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
	}

	return nil
}
