package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/dinobot/internal/battle"
	"github.com/jwebster45206/dinobot/internal/bot"
	"github.com/jwebster45206/dinobot/internal/config"
	"github.com/jwebster45206/dinobot/internal/cooldown"
	"github.com/jwebster45206/dinobot/internal/economy"
	"github.com/jwebster45206/dinobot/internal/hatchery"
	"github.com/jwebster45206/dinobot/internal/logger"
	"github.com/jwebster45206/dinobot/internal/progression"
	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/quest"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting dinobot",
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"command_prefix", cfg.CommandPrefix)

	if cfg.DiscordToken == "" {
		log.Error("DISCORD_TOKEN is required")
		os.Exit(1)
	}

	var store storage.UserStore
	switch cfg.StorageBackend {
	case config.StorageRedis:
		redisStore := storage.NewRedisStore(cfg.RedisURL, log)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := redisStore.WaitForConnection(storageCtx); err != nil {
			storageCancel()
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		storageCancel()
		store = redisStore
	case config.StorageFile:
		fileStore, err := storage.NewFileStore(cfg.DataDir, log)
		if err != nil {
			log.Error("Failed to initialize file storage", "error", err)
			os.Exit(1)
		}
		store = fileStore
	default:
		log.Error("Invalid storage backend", "backend", cfg.StorageBackend, "supported", []string{config.StorageFile, config.StorageRedis})
		os.Exit(1)
	}

	catalog, err := quest.LoadCatalog(cfg.QuestFile)
	if err != nil {
		log.Error("Failed to load quest catalog", "file", cfg.QuestFile, "error", err)
		os.Exit(1)
	}
	log.Info("Quest catalog loaded", "file", cfg.QuestFile, "quests", catalog.Len())

	jobs, err := economy.LoadJobs(cfg.JobsFile)
	if err != nil {
		log.Error("Failed to load jobs table", "file", cfg.JobsFile, "error", err)
		os.Exit(1)
	}

	cooldowns := cooldown.NewLedger(store)
	engine := progression.NewEngine(store, log)
	hatcherySvc := hatchery.NewService(store, log)
	economySvc := economy.NewService(store, cooldowns, jobs, log)
	battleSvc := battle.NewService(store, log)

	dispatcher := bot.NewDispatcher(cfg.CommandPrefix, engine, cfg.AdminIDs, log)
	bot.NewCommands(catalog, engine, hatcherySvc, economySvc, battleSvc, cooldowns).RegisterAll(dispatcher)

	discord, err := bot.NewDiscord(cfg.DiscordToken, dispatcher, log)
	if err != nil {
		log.Error("Failed to create discord session", "error", err)
		os.Exit(1)
	}
	if err := discord.Open(); err != nil {
		log.Error("Failed to connect to discord", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to discord gateway")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	if err := discord.Close(); err != nil {
		log.Error("Error closing discord session", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Shutdown complete")
}
