package repositories

import (
	"context"

	"qualis/internal/domain/models"
)

// QualityProfileRepository provides access to quality profiles and their
// project associations.
type QualityProfileRepository interface {
	// GetByKey retrieves a quality profile by key.
	// Returns domain.ErrNotFound if no such profile exists.
	GetByKey(ctx context.Context, key string) (*models.QualityProfile, error)

	// SelectProjectAssociations lists projects relative to the profile
	// according to the selection mode, optionally filtered by a
	// case-insensitive name substring. The result is unordered and
	// unauthorized; callers sort, filter and page it.
	SelectProjectAssociations(ctx context.Context, profileKey string, mode models.SelectionMode, nameQuery string) ([]models.ProjectAssociation, error)

	// AddProject associates a project with the profile. Adding an existing
	// association is a no-op.
	AddProject(ctx context.Context, profileKey, projectUUID string) error

	// RemoveProject dissociates a project from the profile. Removing a
	// missing association is a no-op.
	RemoveProject(ctx context.Context, profileKey, projectUUID string) error

	// Create inserts a profile (used by seeding).
	Create(ctx context.Context, profile *models.QualityProfile) error
}
