package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-sum/config"
	"github.com/nijaru/yt-sum/db"
	"github.com/nijaru/yt-sum/handlers"
	"github.com/nijaru/yt-sum/logger"
	"github.com/nijaru/yt-sum/middleware"
	"github.com/nijaru/yt-sum/services/summary"
	"github.com/nijaru/yt-sum/storage"
	"github.com/nijaru/yt-sum/summarizer"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", os.Getenv("YTSUM_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := summarizer.New(
		summarizer.WithBaseURL(cfg.Summarizer.BaseURL),
		summarizer.WithLogger(log),
		summarizer.WithDebug(cfg.Summarizer.Debug),
	)

	opts := []summary.Option{summary.WithLogger(log)}

	if cfg.Database.Path != "" {
		history, err := db.Open(ctx, cfg.Database.Path, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		defer func() {
			if err := history.Close(); err != nil {
				log.WithError(err).Error("Failed to close database")
			}
		}()
		opts = append(opts, summary.WithRepository(history))
	}

	if cfg.Archive.Bucket != "" {
		archive, err := storage.NewArchive(ctx, cfg.Archive)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize archive")
		}
		opts = append(opts, summary.WithArchive(archive))
	}

	service := summary.NewService(client, opts...)

	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		rateLimit = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize).Middleware
	}

	handler := middleware.Chain(handlers.New(service, log).Routes(),
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logging(log),
		rateLimit,
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Server.Port,
			"upstream": cfg.Summarizer.BaseURL,
		}).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Server error")
			return
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}
}
