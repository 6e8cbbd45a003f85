package repositories

import (
	"context"

	"qualis/internal/domain/models"
)

// AuthorizationRepository reads role grants. A grant with no component scope
// is global; a scoped grant applies to one project component.
type AuthorizationRepository interface {
	// HasGlobalRole reports whether the user holds the role globally.
	HasGlobalRole(ctx context.Context, userUUID string, role models.Role) (bool, error)

	// HasComponentRole reports whether the user holds the role on the given
	// component, either through a scoped grant or a global one.
	HasComponentRole(ctx context.Context, userUUID string, role models.Role, componentUUID string) (bool, error)

	// KeepAuthorizedProjectUUIDs filters projectUUIDs down to those the user
	// holds the role on. Unauthorized ids are silently dropped.
	KeepAuthorizedProjectUUIDs(ctx context.Context, userUUID string, role models.Role, projectUUIDs []string) (map[string]struct{}, error)

	// Grant records a role grant (used by seeding). componentUUID may be
	// empty for a global grant.
	Grant(ctx context.Context, userUUID string, role models.Role, componentUUID string) error
}
