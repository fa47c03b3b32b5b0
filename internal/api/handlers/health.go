package handlers

import (
	"net/http"

	"github.com/finze-app/finze-backend/internal/api/dto"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
	"github.com/finze-app/finze-backend/internal/reconcile"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	repo storage.Repository
	feed ReconciledFeed
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo storage.Repository, feed ReconciledFeed) *HealthHandler {
	return &HealthHandler{repo: repo, feed: feed}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]string)

	if err := h.repo.Ping(); err != nil {
		services["storage"] = "unavailable"
	} else {
		services["storage"] = "healthy"
	}

	if h.feed.State() == reconcile.StateSubscribed {
		services["reconciler"] = "healthy"
	} else {
		services["reconciler"] = string(h.feed.State())
	}

	WriteJSON(w, http.StatusOK, dto.NewHealthResponse(services))
}
