package auth

import (
	"context"
	"fmt"

	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
	"qualis/internal/domain/services"
)

// RoleBasedAuthorizer implements ComponentAuthorizer using role grants.
// A user may act on a component when they hold the required role on the
// component's project, or hold it globally (system administrator).
type RoleBasedAuthorizer struct {
	authzRepo repositories.AuthorizationRepository
}

// NewRoleBasedAuthorizer creates a new role-based authorizer
func NewRoleBasedAuthorizer(authzRepo repositories.AuthorizationRepository) services.ComponentAuthorizer {
	return &RoleBasedAuthorizer{authzRepo: authzRepo}
}

// CheckComponentPermission returns domain.ErrForbidden unless the user holds
// the role on the component or globally. Grants are held against the
// component's project root, so module components check their project.
func (a *RoleBasedAuthorizer) CheckComponentPermission(ctx context.Context, userUUID string, role models.Role, component *models.Component) error {
	target := component.UUID
	if component.ProjectUUID != "" {
		target = component.ProjectUUID
	}

	ok, err := a.authzRepo.HasComponentRole(ctx, userUUID, role, target)
	if err != nil {
		return fmt.Errorf("check component permission: %w", err)
	}
	if !ok {
		return fmt.Errorf("insufficient privileges on component '%s': %w", component.Key, domain.ErrForbidden)
	}

	return nil
}

// KeepAuthorizedProjects filters project uuids down to those the user holds
// the role on. Unauthorized ids are dropped, not reported.
func (a *RoleBasedAuthorizer) KeepAuthorizedProjects(ctx context.Context, userUUID string, role models.Role, projectUUIDs []string) (map[string]struct{}, error) {
	return a.authzRepo.KeepAuthorizedProjectUUIDs(ctx, userUUID, role, projectUUIDs)
}
