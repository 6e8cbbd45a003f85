package handler

import (
	"log/slog"
	"net/http"

	"qualis/internal/domain/services"
	"qualis/internal/httputil"
)

// ComponentHandler handles component HTTP requests
type ComponentHandler struct {
	componentService services.ComponentService
	logger           *slog.Logger
}

// NewComponentHandler creates a new component handler
func NewComponentHandler(componentService services.ComponentService, logger *slog.Logger) *ComponentHandler {
	return &ComponentHandler{
		componentService: componentService,
		logger:           logger,
	}
}

// BulkUpdateKey bulk updates a project or module key and all its
// sub-component keys by replacing a part of the key with another string.
// Set dryRun to simulate the update without changing any key.
// POST /api/components/bulk_update_key
func (h *ComponentHandler) BulkUpdateKey(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.BulkUpdateKeyRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.componentService.BulkUpdateKey(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
