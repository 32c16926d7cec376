package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lawnchairsociety/abyssforge/internal/config"
	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/logger"
	"github.com/lawnchairsociety/abyssforge/internal/namefilter"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
	"github.com/lawnchairsociety/abyssforge/internal/server"
)

func main() {
	serverConfigFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	nameFilterConfig := flag.String("slotnames", "data/slotnames.yaml", "Path to slot name filter config YAML file")
	deleteSave := flag.String("delete-save", "", "Delete a save slot and exit (requires slot name)")
	flag.Parse()

	// .env is optional; real environment variables win
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load %s: %v", *envFile, err)
	}

	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	serverCfg, err := config.LoadConfig(*serverConfigFile)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *serverConfigFile, "error", err)
	}

	db, err := database.OpenWithConfig(serverCfg.DatabaseConfig())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Save database initialized", "driver", db.Driver())

	if *deleteSave != "" {
		handleDeleteSave(db, *deleteSave)
		return
	}

	ruleset, err := loadRules(serverCfg.Game)
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	logger.Info("Rules loaded",
		"name", ruleset.Name,
		"variant", ruleset.Variant.String(),
		"starting_gold", ruleset.StartingGold,
		"materials", len(ruleset.Catalog.Templates()))

	if len(serverCfg.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(serverCfg.WebSocket.AllowedOrigins) == 1 && serverCfg.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", serverCfg.WebSocket.AllowedOrigins)
	}
	if serverCfg.Game.GrantsEnabled {
		logger.Warning("Debug supply grants are enabled")
	}

	srv := server.NewServer(serverCfg, db, ruleset)

	nameCfg, err := namefilter.LoadConfig(*nameFilterConfig)
	if err != nil {
		logger.Warning("Failed to load slot name filter config, only default reserved names apply", "path", *nameFilterConfig, "error", err)
	} else {
		nf := namefilter.New(nameCfg)
		srv.SetNameFilter(nf)
		if nf.IsEnabled() {
			words, reserved := nf.Counts()
			logger.Info("Slot name filter enabled", "banned_words", words, "reserved_slots", reserved)
		}
	}
	if serverCfg.Commands.ThrottleEnabled {
		logger.Info("Command throttle enabled", "max_per_window", serverCfg.Commands.MaxPerWindow, "window_seconds", serverCfg.Commands.WindowSeconds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Abyss Forge server running", "address", serverCfg.Server.ListenAddr)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// loadRules reads the rules file when one is configured, otherwise the
// named preset
func loadRules(cfg config.GameConfig) (*rules.Ruleset, error) {
	if cfg.RulesFile != "" {
		return rules.Load(cfg.RulesFile)
	}
	return rules.ByName(cfg.Preset)
}

// handleDeleteSave removes a slot and its history and exits
func handleDeleteSave(db *database.Database, slot string) {
	if err := db.DeleteSave(slot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete %s: %v\n", slot, err)
		os.Exit(1)
	}
	logger.Always("Save deleted from the command line", "slot", slot)
	fmt.Printf("Deleted save %s.\n", slot)
}
