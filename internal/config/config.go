package config

import (
	"log/slog"
	"os"
	"strings"
)

// Storage backend selectors.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

type Config struct {
	Environment string
	LogLevel    slog.Level

	DiscordToken  string
	CommandPrefix string
	AdminIDs      []string

	StorageBackend string
	DataDir        string
	RedisURL       string

	QuestFile string
	JobsFile  string
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		CommandPrefix: getEnv("COMMAND_PREFIX", "!"),
		AdminIDs:      splitList(os.Getenv("ADMIN_IDS")),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageFile),
		DataDir:        getEnv("DATA_DIR", "./userdata"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),

		QuestFile: getEnv("QUEST_FILE", "./data/quests.json"),
		JobsFile:  getEnv("JOBS_FILE", "./data/jobs.json"),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
