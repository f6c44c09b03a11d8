package config

import (
	"os"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port           string
	Env            string
	DatabaseURL    string // postgres DSN; empty selects the sqlite backend
	DBPath         string
	AllowedOrigins []string // websocket origin patterns; empty means same-origin only
}

const (
	defaultPort   = "8080"
	defaultEnv    = "production"
	defaultDBPath = "data/rooms.db"
)

// Load builds a Config from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", defaultPort),
		Env:            getEnv("APP_ENV", defaultEnv),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBPath:         getEnv("DB_PATH", defaultDBPath),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
