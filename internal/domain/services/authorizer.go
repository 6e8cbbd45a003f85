package services

import (
	"context"

	"qualis/internal/domain/models"
)

// ComponentAuthorizer decides what the acting user may do with components.
// Injected into services so permission storage stays pluggable.
type ComponentAuthorizer interface {
	// CheckComponentPermission returns domain.ErrForbidden unless the user
	// holds the role on the component or holds it globally.
	CheckComponentPermission(ctx context.Context, userUUID string, role models.Role, component *models.Component) error

	// KeepAuthorizedProjects filters project uuids down to those the user
	// holds the role on.
	KeepAuthorizedProjects(ctx context.Context, userUUID string, role models.Role, projectUUIDs []string) (map[string]struct{}, error)
}
