package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"tally/internal/backend"
	"tally/internal/cli"
	"tally/internal/geoip"
	apphttp "tally/internal/http"
	applog "tally/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)

	logger.Info("Starting tally server")

	cfg := cli.LoadAndValidateConfig(logger)

	factory := backend.NewFactory(logger)
	result, err := factory.Create(context.Background(), backend.Config{
		Type:            backend.Type(cfg.DataBackend),
		SQLiteDBPath:    cfg.SQLiteDBPath,
		AMQPURL:         cfg.AMQPURL,
		AMQPExchange:    cfg.AMQPExchange,
		AMQPQueue:       cfg.AMQPQueue,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Resolve location and currency once per startup, in the background.
	// A failure keeps the stored locale, or the configured default.
	if cfg.GeoIPURL != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.GeoIPTimeout+time.Second)
			defer cancel()

			resolver := geoip.NewResolver(cfg.GeoIPURL, cfg.GeoIPTimeout, logger)
			loc, err := resolver.Resolve(ctx)
			if err != nil {
				logger.Warn("Geolocation failed, keeping current locale", applog.FieldError, err.Error())
				return
			}
			if err := result.Service.ApplyLocation(ctx, loc); err != nil {
				logger.Warn("Failed to store session locale", applog.FieldError, err.Error())
			}
		}()
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Service, cfg.CacheSize, cfg.CacheTTL)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting tally server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
