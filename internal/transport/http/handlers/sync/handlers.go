package synchandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rhmaster/internal/platform/metrics"
	"rhmaster/internal/store"
	"rhmaster/internal/transport/http/api"
	"rhmaster/internal/transport/http/middleware"
)

type Handler struct {
	Store   *store.Store
	Metrics *metrics.Collector
}

func NewHandler(st *store.Store, collector *metrics.Collector) *Handler {
	return &Handler{Store: st, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.handleStatus)
	r.Post("/sync/reload", h.handleReload)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]any{
		"store":   h.Store.Status(),
		"metrics": h.Metrics.Snapshot(),
	}, middleware.GetRequestID(r.Context()))
}

// handleReload always answers 200; an unreachable remote is reported in
// the body, not as a failure.
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	mode, err := h.Store.Reload(r.Context())
	body := map[string]any{"mode": mode}
	if err != nil {
		body["reason"] = err.Error()
	}
	api.Success(w, body, middleware.GetRequestID(r.Context()))
}
