package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/handlers"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/repository/sqlite"
	transcriptsvc "github.com/nijaru/yt-transcript/services/transcript"
	"github.com/nijaru/yt-transcript/storage"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/nijaru/yt-transcript/transcript/script"
	"github.com/nijaru/yt-transcript/transcript/youtube"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	provider, err := newProvider(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize transcript provider")
	}

	opts := []transcriptsvc.Option{transcriptsvc.WithLogger(appLogger)}

	var db *sql.DB
	if cfg.Cache.Enabled {
		dbConfig := sqlite.DefaultDBConfig()
		db, err = sqlite.InitDB(cfg.Cache.DBPath, dbConfig)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize cache database")
		}
		opts = append(opts, transcriptsvc.WithRepository(sqlite.NewRepository(db, dbConfig)))
		appLogger.WithFields(logrus.Fields{
			"path": cfg.Cache.DBPath,
			"ttl":  cfg.Cache.TTL,
		}).Info("Transcript cache enabled")
	}

	if cfg.Archive.Enabled {
		archive, err := storage.NewSpacesClient(context.Background(), storage.SpacesConfig{
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			Bucket:    cfg.Archive.Bucket,
			PathStyle: cfg.Archive.PathStyle,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize archive")
		}
		opts = append(opts, transcriptsvc.WithArchive(archive))
		appLogger.WithField("bucket", cfg.Archive.Bucket).Info("Transcript archive enabled")
	}

	service := transcriptsvc.NewService(provider, transcriptsvc.Config{CacheTTL: cfg.Cache.TTL}, opts...)

	server := handlers.NewServer(cfg,
		handlers.WithService(service),
		handlers.WithLogger(appLogger),
	)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-shutdownChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.WithError(err).Error("Server shutdown error")
		}
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		appLogger.WithError(err).Fatal("Server error")
	}
	<-done

	if db != nil {
		if err := db.Close(); err != nil {
			appLogger.WithError(err).Error("Database shutdown error")
		}
	}
	appLogger.Info("Server stopped")
}

func newProvider(cfg *config.Config, logger *logrus.Logger) (transcript.Provider, error) {
	tc := cfg.Transcript
	entry := logger.WithField("provider", tc.Provider)

	switch tc.Provider {
	case config.ProviderScript:
		entry.WithField("path", tc.ScriptPath).Info("Using transcript script")
		return script.NewRunner(script.Config{
			Path:      tc.ScriptPath,
			Languages: tc.Languages,
			Logger:    entry,
		})
	default:
		entry.WithField("languages", tc.Languages).Info("Using YouTube caption client")
		return youtube.New(youtube.Config{
			BaseURL:   tc.BaseURL,
			Languages: tc.Languages,
			UserAgent: tc.UserAgent,
			Timeout:   tc.HTTPTimeout,
			Logger:    entry,
		}), nil
	}
}
