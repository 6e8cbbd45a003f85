package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
)

// PostgresComponentRepository implements the ComponentRepository interface
type PostgresComponentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewComponentRepository creates a new component repository
func NewComponentRepository(config *RepositoryConfig) repositories.ComponentRepository {
	return &PostgresComponentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const componentColumns = "uuid, kee, name, qualifier, COALESCE(parent_uuid, ''), COALESCE(project_uuid, ''), enabled, created_at, updated_at"

func scanComponent(row pgx.Row, c *models.Component) error {
	return row.Scan(
		&c.UUID,
		&c.Key,
		&c.Name,
		&c.Qualifier,
		&c.ParentUUID,
		&c.ProjectUUID,
		&c.Enabled,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// GetByUUID retrieves an enabled component by uuid
func (r *PostgresComponentRepository) GetByUUID(ctx context.Context, uuid string) (*models.Component, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE uuid = $1 AND enabled = TRUE
	`, componentColumns, r.tables.Components)

	var component models.Component
	err := scanComponent(GetExecutor(ctx, r.pool).QueryRow(ctx, query, uuid), &component)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("component id '%s': %w", uuid, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get component by uuid: %w", err)
	}

	return &component, nil
}

// GetByKey retrieves an enabled component by key
func (r *PostgresComponentRepository) GetByKey(ctx context.Context, key string) (*models.Component, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE kee = $1 AND enabled = TRUE
	`, componentColumns, r.tables.Components)

	var component models.Component
	err := scanComponent(GetExecutor(ctx, r.pool).QueryRow(ctx, query, key), &component)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("component key '%s': %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get component by key: %w", err)
	}

	return &component, nil
}

// SelectSubtree returns the root component and all its enabled descendants.
// Walks parent_uuid links with a recursive CTE so module subtrees work the
// same as whole projects.
func (r *PostgresComponentRepository) SelectSubtree(ctx context.Context, rootUUID string) ([]models.Component, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT %[1]s
			FROM %[2]s
			WHERE uuid = $1 AND enabled = TRUE
			UNION ALL
			SELECT c.uuid, c.kee, c.name, c.qualifier, COALESCE(c.parent_uuid, ''), COALESCE(c.project_uuid, ''), c.enabled, c.created_at, c.updated_at
			FROM %[2]s c
			INNER JOIN subtree s ON c.parent_uuid = s.uuid
			WHERE c.enabled = TRUE
		)
		SELECT * FROM subtree
	`, componentColumns, r.tables.Components)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, rootUUID)
	if err != nil {
		return nil, fmt.Errorf("select subtree: %w", err)
	}
	defer rows.Close()

	var components []models.Component
	for rows.Next() {
		var component models.Component
		if err := scanComponent(rows, &component); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		components = append(components, component)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtree: %w", err)
	}

	return components, nil
}

// SelectExistingKeys maps each already-taken key to the uuid of the enabled
// component bearing it. Keys absent from the result are free.
func (r *PostgresComponentRepository) SelectExistingKeys(ctx context.Context, keys []string) (map[string]string, error) {
	existing := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return existing, nil
	}

	query := fmt.Sprintf(`
		SELECT kee, uuid
		FROM %s
		WHERE kee = ANY($1) AND enabled = TRUE
	`, r.tables.Components)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("select existing keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, uuid string
		if err := rows.Scan(&key, &uuid); err != nil {
			return nil, fmt.Errorf("scan existing key: %w", err)
		}
		existing[key] = uuid
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing keys: %w", err)
	}

	return existing, nil
}

// UpdateKey persists a new key for a component. Runs against the context
// transaction when one is present, so a bulk update commits atomically.
func (r *PostgresComponentRepository) UpdateKey(ctx context.Context, uuid, newKey string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET kee = $1, updated_at = NOW()
		WHERE uuid = $2
	`, r.tables.Components)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, newKey, uuid)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a component with key %q already exists", newKey),
				ResourceType: "component",
			}
		}
		return fmt.Errorf("update component key: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("component id '%s': %w", uuid, domain.ErrNotFound)
	}

	return nil
}

// Create inserts a component
func (r *PostgresComponentRepository) Create(ctx context.Context, component *models.Component) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (uuid, kee, name, qualifier, parent_uuid, project_uuid, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), TRUE, NOW(), NOW())
		RETURNING created_at, updated_at
	`, r.tables.Components)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		component.UUID,
		component.Key,
		component.Name,
		component.Qualifier,
		component.ParentUUID,
		component.ProjectUUID,
	).Scan(&component.CreatedAt, &component.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a component with key %q already exists", component.Key),
				ResourceType: "component",
			}
		}
		return fmt.Errorf("create component: %w", err)
	}

	component.Enabled = true
	return nil
}
