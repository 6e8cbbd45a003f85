package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"qualis/internal/config"
	"qualis/internal/database"
	"qualis/internal/languages"
	"qualis/internal/repository/postgres"
	"qualis/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Environment == "prod" {
		log.Fatal("refusing to seed a production database")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := database.RunMigrations(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	registry, err := languages.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load language registry: %v", err)
	}

	repos := seed.Repositories{
		Components: postgres.NewComponentRepository(repoConfig),
		Profiles:   postgres.NewQualityProfileRepository(repoConfig),
		Authz:      postgres.NewAuthorizationRepository(repoConfig),
	}

	if err := seed.Run(ctx, repos, registry, logger); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	logger.Info("seeding complete", "table_prefix", cfg.TablePrefix)
}
