package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"diginotes/config"
	"diginotes/handlers/api"
	"diginotes/metrics"
	"diginotes/storage"
	"diginotes/utils"
)

func main() {
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	utils.Log.SetLevel(utils.ParseLevel(cfg.Server.LogLevel))

	db, err := storage.Open(cfg.Database)
	if err != nil {
		utils.Log.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	utils.Log.Info("Database connected")

	if err := storage.RunMigrations(cfg.Database.URL); err != nil {
		utils.Log.Error("Migration failed: %v", err)
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
		metrics.StartMetricsServer(cfg.Metrics.Addr)
	}

	app := api.NewRouter(cfg, api.Stores{
		Users:   storage.NewUserStore(db),
		Notes:   storage.NewNoteStore(db),
		Folders: storage.NewFolderStore(db),
		Tags:    storage.NewTagStore(db),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		utils.Log.Info("Shutting down...")
		if err := app.Shutdown(); err != nil {
			utils.Log.Error("Shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	utils.Log.Info("Starting server on %s", addr)
	if err := app.Listen(addr); err != nil {
		utils.Log.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
