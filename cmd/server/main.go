package main

import (
	"log"

	"github.com/gelaws-hub/board-game/internal/config"
	"github.com/gelaws-hub/board-game/internal/database"
	"github.com/gelaws-hub/board-game/internal/events"
	"github.com/gelaws-hub/board-game/internal/game"
	"github.com/gelaws-hub/board-game/internal/server"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("loading config", "error", err)
	}

	var results *database.Service
	if cfg.DBDriver != "" {
		results, err = database.New(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			// Results history is optional; the tables keep running without it.
			sugar.Warnw("results store unavailable", "error", err)
			results = nil
		} else {
			defer results.Close()
		}
	}

	publisher := events.NewPublisher(cfg.NATSURL, sugar)
	defer publisher.Close()

	registry := game.NewRegistry(game.NewMinumanRules(), sugar)
	hub := server.NewHub(registry, results, publisher, sugar)

	reaper := game.NewReaper(cfg.IdleTTL, cfg.FinishedTTL, hub.ExpireGame, sugar)
	registry.AttachReaper(reaper)

	go reaper.Run()
	go hub.Run()

	router := server.NewRouter(hub, registry, results, sugar)

	sugar.Infow("server listening", "port", cfg.HTTPPort)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
