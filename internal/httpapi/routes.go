package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/glitchhunt/glitchhunt-backend/internal/hub"
	"github.com/glitchhunt/glitchhunt-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log, allowedOrigins))
	return r
}
