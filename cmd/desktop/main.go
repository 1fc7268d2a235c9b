package main

import (
	"github.com/stwalsh4118/lectern/internal/config"
	"github.com/stwalsh4118/lectern/internal/desktop"
	"github.com/stwalsh4118/lectern/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// The desktop shell keeps its database in the per-user config directory
	// so it survives app relocation.
	if dbPath, err := config.DesktopDatabasePath(); err == nil {
		cfg.Database.Path = dbPath
	}

	app := desktop.NewApp(cfg)

	// Mirror server logs into the tray UI via the app's channel.
	logger.InitWithWriter(cfg.Logging.Level, cfg.Logging.Pretty, desktop.NewCallbackWriter(app.EnqueueLog))

	app.Run()
}
