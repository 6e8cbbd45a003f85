package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"qualis/internal/repository/postgres"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all migrations in order, with table names resolved
// against the environment prefix.
func GetMigrations(tables *postgres.TableNames) []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create components table",
			SQL: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %[1]s (
					uuid VARCHAR(40) PRIMARY KEY,
					kee VARCHAR(400) NOT NULL,
					name VARCHAR(255) NOT NULL,
					qualifier VARCHAR(10) NOT NULL,
					parent_uuid VARCHAR(40) REFERENCES %[1]s(uuid),
					project_uuid VARCHAR(40),
					enabled BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_components_kee ON %[1]s(kee);
				CREATE INDEX IF NOT EXISTS idx_components_parent ON %[1]s(parent_uuid);
				CREATE INDEX IF NOT EXISTS idx_components_project ON %[1]s(project_uuid);
			`, tables.Components),
		},
		{
			Version:     2,
			Description: "Create quality_profiles table",
			SQL: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					kee VARCHAR(255) PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					language VARCHAR(20) NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`, tables.QualityProfiles),
		},
		{
			Version:     3,
			Description: "Create project_profiles association table",
			SQL: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %[1]s (
					project_uuid VARCHAR(40) NOT NULL REFERENCES %[2]s(uuid),
					profile_key VARCHAR(255) NOT NULL REFERENCES %[3]s(kee),
					UNIQUE (project_uuid, profile_key)
				);
			`, tables.ProjectProfiles, tables.Components, tables.QualityProfiles),
		},
		{
			Version:     4,
			Description: "Create role_grants table",
			SQL: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %[1]s (
					user_uuid VARCHAR(40) NOT NULL,
					role VARCHAR(20) NOT NULL,
					component_uuid VARCHAR(40) REFERENCES %[2]s(uuid)
				);

				CREATE UNIQUE INDEX IF NOT EXISTS uniq_role_grants
					ON %[1]s(user_uuid, role, COALESCE(component_uuid, ''));
			`, tables.RoleGrants, tables.Components),
		},
		{
			Version:     5,
			Description: "Replace plain key index with partial unique index on enabled components",
			SQL: fmt.Sprintf(`
				DROP INDEX IF EXISTS idx_components_kee;

				CREATE UNIQUE INDEX IF NOT EXISTS uniq_components_kee_enabled
					ON %s(kee) WHERE enabled;
			`, tables.Components),
		},
	}
}

// RunMigrations executes all pending migrations, each inside its own
// transaction, and records them in the schema_migrations table.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			description VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL
		);
	`, tables.Migrations))
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion int
	err = pool.QueryRow(ctx, fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", tables.Migrations)).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current schema version: %w", err)
	}

	logger.Info("current schema version", "version", currentVersion)

	appliedCount := 0
	for _, migration := range GetMigrations(tables) {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("applying migration", "version", migration.Version, "description", migration.Description)

		if err := applyMigration(ctx, pool, tables, migration); err != nil {
			return err
		}
		appliedCount++
	}

	if appliedCount > 0 {
		logger.Info("migrations applied", "count", appliedCount)
	} else {
		logger.Info("no pending migrations")
	}

	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, migration Migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for migration %d: %w", migration.Version, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("migration rollback failed", "version", migration.Version, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, migration.SQL); err != nil {
		return fmt.Errorf("execute migration %d: %w", migration.Version, err)
	}

	_, err = tx.Exec(ctx,
		fmt.Sprintf("INSERT INTO %s (version, description, applied_at) VALUES ($1, $2, NOW())", tables.Migrations),
		migration.Version, migration.Description,
	)
	if err != nil {
		return fmt.Errorf("record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %d: %w", migration.Version, err)
	}

	return nil
}
