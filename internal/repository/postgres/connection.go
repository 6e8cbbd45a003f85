package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"qualis/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Components      string
	QualityProfiles string
	ProjectProfiles string
	RoleGrants      string
	Migrations      string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Components:      fmt.Sprintf("%scomponents", prefix),
		QualityProfiles: fmt.Sprintf("%squality_profiles", prefix),
		ProjectProfiles: fmt.Sprintf("%sproject_profiles", prefix),
		RoleGrants:      fmt.Sprintf("%srole_grants", prefix),
		Migrations:      fmt.Sprintf("%sschema_migrations", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// If the connection string points at a transaction pooler (PgBouncer style,
// port 6543), prepared statements break with "prepared statement already
// exists" errors. QueryExecModeCacheDescribe caches statement descriptions
// instead of prepared statements and stays pooler compatible. An explicit
// default_query_exec_mode in the connection string takes precedence.
//
// The fmt.Sprintf table-name interpolation used by the repositories is safe
// with prepared statements because the SQL string is built before being sent
// to the database; each environment prefix yields its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
