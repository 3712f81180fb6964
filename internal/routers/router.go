package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coderoom/internal/api"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/languages", h.ListLanguages)
	r.Get("/api/v1/rooms/{id}", h.RoomStatus)

	r.Get("/ws", h.CollabWS)

	return r
}
