package handler

import (
	"context"
	"log/slog"
	"net/http"

	"qualis/internal/config"
	"qualis/internal/domain/services"
	"qualis/internal/httputil"
)

// QualityProfileHandler handles quality profile HTTP requests
type QualityProfileHandler struct {
	profileService services.QualityProfileService
	logger         *slog.Logger
}

// NewQualityProfileHandler creates a new quality profile handler
func NewQualityProfileHandler(profileService services.QualityProfileService, logger *slog.Logger) *QualityProfileHandler {
	return &QualityProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// ListProjects lists projects with their association status regarding a
// quality profile.
// GET /api/qualityprofiles/projects?key=...&selected=...&query=...&page=...&pageSize=...
func (h *QualityProfileHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	page, err := httputil.QueryInt(r, "page", 1)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := httputil.QueryInt(r, "pageSize", config.DefaultPageSize)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := services.ProfileProjectsRequest{
		ProfileKey: r.URL.Query().Get("key"),
		Selected:   r.URL.Query().Get("selected"),
		Query:      r.URL.Query().Get("query"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.profileService.ListProjects(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// AddProject associates a project with a quality profile.
// POST /api/qualityprofiles/add_project
func (h *QualityProfileHandler) AddProject(w http.ResponseWriter, r *http.Request) {
	h.changeAssociation(w, r, h.profileService.AddProject)
}

// RemoveProject dissociates a project from a quality profile.
// POST /api/qualityprofiles/remove_project
func (h *QualityProfileHandler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	h.changeAssociation(w, r, h.profileService.RemoveProject)
}

func (h *QualityProfileHandler) changeAssociation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID string, req *services.ProfileProjectRequest) error) {
	userID := httputil.GetUserID(r)

	var req services.ProfileProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := op(r.Context(), userID, &req); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
