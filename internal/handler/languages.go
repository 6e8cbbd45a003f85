package handler

import (
	"log/slog"
	"net/http"

	"qualis/internal/httputil"
	"qualis/internal/languages"
)

// LanguageHandler serves the supported analysis languages
type LanguageHandler struct {
	registry *languages.Registry
	logger   *slog.Logger
}

// NewLanguageHandler creates a new language handler
func NewLanguageHandler(registry *languages.Registry, logger *slog.Logger) *LanguageHandler {
	return &LanguageHandler{
		registry: registry,
		logger:   logger,
	}
}

// List returns all supported analysis languages
// GET /api/languages/list
func (h *LanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"languages": h.registry.List(),
	})
}
