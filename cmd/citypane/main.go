package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/IbbyMan/citypane/internal/cache"
	"github.com/IbbyMan/citypane/internal/config"
	"github.com/IbbyMan/citypane/internal/frame"
	"github.com/IbbyMan/citypane/internal/gallery"
	httphandler "github.com/IbbyMan/citypane/internal/http"
	"github.com/IbbyMan/citypane/internal/imagegen"
	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/observability"
	"github.com/IbbyMan/citypane/internal/scene"
	"github.com/IbbyMan/citypane/internal/scheduler"
	"github.com/IbbyMan/citypane/internal/weather"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if cfg.PollinationsAPIKey == "" {
		logger.Warn("POLLINATIONS_API_KEY not set; image generation will fail until configured")
	}

	var cacheStore cache.Store
	var memcacheCloser *cache.MemcachedStore
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedStore(cfg.MemcachedAddrs, cfg.CacheTTL, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		cacheStore = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		cacheStore = cache.NewInMemoryStore(cfg.CacheTTL)
		logger.Info("cache backend: in_memory")
	}

	weatherClient := weather.NewOpenMeteoClient(cfg.OpenMeteoURL, cfg.WeatherTimeout)
	weatherSvc := weather.NewService(weatherClient, logger)

	generator := imagegen.NewPollinationsClient(
		cfg.PollinationsAPIKey,
		cfg.PollinationsURL,
		cfg.DefaultModel,
		cfg.FallbackModels,
		cfg.GenerateTimeout,
		logger,
	)

	store, err := gallery.OpenStore(cfg.GalleryDBPath)
	if err != nil {
		logger.Fatal("gallery store", zap.Error(err))
	}
	gallerySvc := gallery.NewService(store, logger)

	manager := frame.NewManager(frame.Deps{
		Cache:     cacheStore,
		Generator: generator,
		Weather:   weatherSvc,
		Messages:  scene.NewMessagePicker(time.Now().UnixNano()),
		Logger:    logger,
	})

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	profile, onboarded, frames, err := gallerySvc.Bootstrap(bootCtx)
	bootCancel()
	if err != nil {
		logger.Fatal("gallery bootstrap", zap.Error(err))
	}
	if onboarded {
		if homeLoc, ok := locations.ByID(profile.HomeCityID); ok {
			manager.SetHomeCity(homeLoc)
		}
	}
	for _, f := range frames {
		if _, err := manager.Add(f); err != nil {
			logger.Warn("skipping frame", zap.String("frameUuid", f.UUID), zap.Error(err))
		}
	}
	logger.Info("gallery loaded",
		zap.Bool("onboarded", onboarded),
		zap.Int("frames", len(frames)))

	// First paint happens in the background; the server starts serving loading
	// states immediately.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerateTimeout+time.Minute)
		defer cancel()
		manager.EnsureAll(ctx)
	}()

	sched := scheduler.New(manager, logger, cfg.WeatherPollInterval, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	var cachePing func() error
	if memcacheCloser != nil {
		cachePing = memcacheCloser.Ping
	}
	handler := httphandler.NewHandler(gallerySvc, manager, generator, logger, cachePing, store.Ping, cfg.GenerateTimeout)
	tracker := httphandler.NewInFlightTracker()
	router := httphandler.NewRouter(handler, logger, limiter, cfg.RequestTimeout, tracker)

	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Write timeout must cover a synchronous relay generation.
		WriteTimeout: cfg.GenerateTimeout + 10*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", tracker.Count()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer waitCancel()
	if err := tracker.Drain(waitCtx, 100*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", tracker.Count()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("gallery store close", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
