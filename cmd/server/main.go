package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/stwalsh4118/lectern/internal/config"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/logger"
	"github.com/stwalsh4118/lectern/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	contentRoot := config.EffectiveContentRoot(cfg)
	if contentRoot == "" {
		logger.Log.Fatal().Msg("no content root configured; set LECTERN_LIBRARY_ROOT or run the desktop app to pick a folder")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to create database directory")
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to get sql.DB")
	}
	if err := db.RunEmbeddedMigrations(sqlDB); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.NewRepositories(database).Settings.EnsureDefaults(ctx); err != nil {
		cancel()
		logger.Log.Fatal().Err(err).Msg("failed to seed default settings")
	}
	cancel()

	srv := server.New(cfg, database, contentRoot)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Log.Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Log.Info().
		Str("content_root", contentRoot).
		Str("database", cfg.Database.Path).
		Msg("starting lectern server")

	if err := srv.Start(); err != nil {
		logger.Log.Error().Err(err).Msg("server error")
	}
}
