package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glitchhunt/glitchhunt-backend/internal/config"
	"github.com/glitchhunt/glitchhunt-backend/internal/httpapi"
	"github.com/glitchhunt/glitchhunt-backend/internal/hub"
	"github.com/glitchhunt/glitchhunt-backend/internal/store"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs

	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.Open(store.Config{DSN: cfg.DatabaseURL, SQLitePath: cfg.DBPath}, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	h := hub.NewHub(ctx, st, logger)

	handler := httpapi.SetupRoutes(h, logger, cfg.AllowedOrigins)

	logger.Info("listening", zap.String("addr", ":"+cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
