// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function such as (*sql.DB).PingContext to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	store Pinger
}

func NewHandler(store Pinger) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/live", h.live)
	r.Get("/ready", h.ready)
}

func (h *Handler) live(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "live"})
}

// ready reports 503 with the failure reason while the store is unreachable.
func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"db":     "error: " + err.Error(),
		})

		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready", "db": "ok"})
}
