package services

import (
	"context"

	"qualis/internal/domain/models"
)

// ProfileProjectsRequest lists projects relative to a quality profile.
type ProfileProjectsRequest struct {
	ProfileKey string
	Selected   string // selected | deselected | all (default all)
	Query      string // optional name substring filter
	Page       int    // default 1
	PageSize   int    // default 100
}

// ProfileProjectRequest associates or dissociates one project and one
// profile. Exactly one of ProjectID and ProjectKey identifies the project.
type ProfileProjectRequest struct {
	ProfileKey string `json:"profileKey"`
	ProjectID  string `json:"projectId,omitempty"`
	ProjectKey string `json:"projectKey,omitempty"`
}

// QualityProfileService exposes quality profile project associations.
type QualityProfileService interface {
	// ListProjects returns one page of project associations for a profile,
	// restricted to projects the caller is authorized to browse, sorted by
	// project name then uuid.
	ListProjects(ctx context.Context, userUUID string, req *ProfileProjectsRequest) (*models.ProfileProjectsPage, error)

	// AddProject associates a project with a profile. Idempotent.
	AddProject(ctx context.Context, userUUID string, req *ProfileProjectRequest) error

	// RemoveProject dissociates a project from a profile. Idempotent.
	RemoveProject(ctx context.Context, userUUID string, req *ProfileProjectRequest) error
}
