package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/tasks"
)

// AdminHandler serves health and reconciliation reports.
type AdminHandler struct {
	backend    models.Backend
	reconciler *tasks.Reconciler
	logger     *log.Logger
}

func (h *AdminHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: h.health},
		{Method: http.MethodGet, Path: "/admin/reconcile", Handler: h.reconcile, Capability: services.CapAdmin},
	}
}

func (h *AdminHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Detail: "storage backend unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// reconcile reports drift without repairing it.
func (h *AdminHandler) reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.Run(r.Context(), nil, true)
	reply(w, h.logger, http.StatusOK, report, err)
}
