package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
)

// PostgresAuthorizationRepository implements the AuthorizationRepository interface
type PostgresAuthorizationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAuthorizationRepository creates a new authorization repository
func NewAuthorizationRepository(config *RepositoryConfig) repositories.AuthorizationRepository {
	return &PostgresAuthorizationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// HasGlobalRole reports whether the user holds the role globally
func (r *PostgresAuthorizationRepository) HasGlobalRole(ctx context.Context, userUUID string, role models.Role) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE user_uuid = $1 AND role = $2 AND component_uuid IS NULL
		)
	`, r.tables.RoleGrants)

	var exists bool
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userUUID, role).Scan(&exists); err != nil {
		return false, fmt.Errorf("check global role: %w", err)
	}

	return exists, nil
}

// HasComponentRole reports whether the user holds the role on the component,
// through a scoped grant or a global one
func (r *PostgresAuthorizationRepository) HasComponentRole(ctx context.Context, userUUID string, role models.Role, componentUUID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE user_uuid = $1 AND role = $2
			  AND (component_uuid = $3 OR component_uuid IS NULL)
		)
	`, r.tables.RoleGrants)

	var exists bool
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userUUID, role, componentUUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check component role: %w", err)
	}

	return exists, nil
}

// KeepAuthorizedProjectUUIDs filters projectUUIDs down to those the user
// holds the role on. A global grant authorizes every id.
func (r *PostgresAuthorizationRepository) KeepAuthorizedProjectUUIDs(ctx context.Context, userUUID string, role models.Role, projectUUIDs []string) (map[string]struct{}, error) {
	authorized := make(map[string]struct{}, len(projectUUIDs))
	if len(projectUUIDs) == 0 {
		return authorized, nil
	}

	global, err := r.HasGlobalRole(ctx, userUUID, role)
	if err != nil {
		return nil, err
	}
	if global {
		for _, uuid := range projectUUIDs {
			authorized[uuid] = struct{}{}
		}
		return authorized, nil
	}

	query := fmt.Sprintf(`
		SELECT component_uuid FROM %s
		WHERE user_uuid = $1 AND role = $2 AND component_uuid = ANY($3)
	`, r.tables.RoleGrants)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userUUID, role, projectUUIDs)
	if err != nil {
		return nil, fmt.Errorf("keep authorized projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return nil, fmt.Errorf("scan authorized project: %w", err)
		}
		authorized[uuid] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authorized projects: %w", err)
	}

	return authorized, nil
}

// Grant records a role grant. componentUUID may be empty for a global grant.
func (r *PostgresAuthorizationRepository) Grant(ctx context.Context, userUUID string, role models.Role, componentUUID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_uuid, role, component_uuid)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT DO NOTHING
	`, r.tables.RoleGrants)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userUUID, role, componentUUID); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	return nil
}
