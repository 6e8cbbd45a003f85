package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
)

// PostgresQualityProfileRepository implements the QualityProfileRepository interface
type PostgresQualityProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewQualityProfileRepository creates a new quality profile repository
func NewQualityProfileRepository(config *RepositoryConfig) repositories.QualityProfileRepository {
	return &PostgresQualityProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByKey retrieves a quality profile by key
func (r *PostgresQualityProfileRepository) GetByKey(ctx context.Context, key string) (*models.QualityProfile, error) {
	query := fmt.Sprintf(`
		SELECT kee, name, language, created_at
		FROM %s
		WHERE kee = $1
	`, r.tables.QualityProfiles)

	var profile models.QualityProfile
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, key).Scan(
		&profile.Key,
		&profile.Name,
		&profile.Language,
		&profile.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("could not find a quality profile with key '%s': %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get quality profile: %w", err)
	}

	return &profile, nil
}

// SelectProjectAssociations lists project components relative to the profile.
// Selected mode keeps associated projects, deselected keeps the rest, all
// keeps every project with its association flag. The optional nameQuery is a
// case-insensitive substring match on the project name.
func (r *PostgresQualityProfileRepository) SelectProjectAssociations(ctx context.Context, profileKey string, mode models.SelectionMode, nameQuery string) ([]models.ProjectAssociation, error) {
	query := fmt.Sprintf(`
		SELECT c.uuid, c.kee, c.name, pp.profile_key IS NOT NULL AS selected
		FROM %s c
		LEFT JOIN %s pp ON pp.project_uuid = c.uuid AND pp.profile_key = $1
		WHERE c.qualifier = $2 AND c.enabled = TRUE
	`, r.tables.Components, r.tables.ProjectProfiles)

	args := []interface{}{profileKey, models.QualifierProject}

	switch mode {
	case models.SelectionSelected:
		query += " AND pp.profile_key IS NOT NULL"
	case models.SelectionDeselected:
		query += " AND pp.profile_key IS NULL"
	}

	if nameQuery != "" {
		args = append(args, "%"+nameQuery+"%")
		query += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select project associations: %w", err)
	}
	defer rows.Close()

	var associations []models.ProjectAssociation
	for rows.Next() {
		var a models.ProjectAssociation
		if err := rows.Scan(&a.ProjectUUID, &a.ProjectKey, &a.ProjectName, &a.Selected); err != nil {
			return nil, fmt.Errorf("scan project association: %w", err)
		}
		associations = append(associations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project associations: %w", err)
	}

	return associations, nil
}

// AddProject associates a project with the profile. Idempotent.
func (r *PostgresQualityProfileRepository) AddProject(ctx context.Context, profileKey, projectUUID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_uuid, profile_key)
		VALUES ($1, $2)
		ON CONFLICT (project_uuid, profile_key) DO NOTHING
	`, r.tables.ProjectProfiles)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, projectUUID, profileKey); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("component id '%s': %w", projectUUID, domain.ErrNotFound)
		}
		return fmt.Errorf("add project to profile: %w", err)
	}

	return nil
}

// RemoveProject dissociates a project from the profile. Idempotent.
func (r *PostgresQualityProfileRepository) RemoveProject(ctx context.Context, profileKey, projectUUID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE project_uuid = $1 AND profile_key = $2
	`, r.tables.ProjectProfiles)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, projectUUID, profileKey); err != nil {
		return fmt.Errorf("remove project from profile: %w", err)
	}

	return nil
}

// Create inserts a profile
func (r *PostgresQualityProfileRepository) Create(ctx context.Context, profile *models.QualityProfile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kee, name, language, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, r.tables.QualityProfiles)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		profile.Key,
		profile.Name,
		profile.Language,
	).Scan(&profile.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("quality profile '%s' already exists", profile.Key),
				ResourceType: "quality profile",
				ResourceID:   profile.Key,
			}
		}
		return fmt.Errorf("create quality profile: %w", err)
	}

	return nil
}
