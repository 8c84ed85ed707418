package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ehime-live/live-schedule/app/api"
	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/cache"
	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/commands"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/feed"
	"github.com/ehime-live/live-schedule/app/metrics"
	"github.com/ehime-live/live-schedule/app/tasks"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "create-user" {
		appCfg, err := cfg.LoadArgs(os.Args[2:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if appCfg == nil {
			return
		}
		if err := commands.CreateUser(appCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Live Schedule server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	eventRepo := database.NewEventRepository(db)
	feedRepo := database.NewFeedRepository(db)
	userRepo := database.NewUserRepository(db)
	sessionRepo := database.NewSessionRepository(db)

	if users, err := userRepo.GetUserCount(context.Background()); err == nil && users == 0 {
		slog.Warn("No users exist yet; create one with the create-user command")
	}

	authService := auth.NewService(userRepo, sessionRepo, appCfg.SessionLifetime())

	responseCache, err := cache.New(appCfg.RedisAddr)
	if err != nil {
		slog.Warn("Response cache unavailable, continuing without it", "addr", appCfg.RedisAddr, "error", err)
		responseCache = cache.NewNoop()
	}
	defer responseCache.Close()

	appMetrics := metrics.New()
	if count, err := eventRepo.GetEventCount(context.Background()); err == nil {
		appMetrics.SetStoredEvents(count)
	}

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configurations: %w", err)
	}
	slog.Info("Feed configurations loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	scheduler := tasks.NewScheduler(tasks.Deps{
		ConfigCache:      configCache,
		FeedRepo:         feedRepo,
		EventRepo:        eventRepo,
		Fetcher:          feed.NewFetcher(httpClient, appCfg.UserAgent),
		Parser:           feed.NewParser(),
		Filterer:         feed.NewFilterer(),
		Extractor:        feed.NewExtractor(),
		ContentExtractor: feed.NewContentExtractor(),
		Sessions:         authService,
		Cache:            responseCache,
		Recorder:         appMetrics,
	})
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", time.Duration(appCfg.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(eventRepo, feedRepo, authService, configCache, scheduler, responseCache, appMetrics)
	router, err := api.NewServer(handler)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "url", appCfg.PublicURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Live Schedule server shutdown complete")
	return nil
}
