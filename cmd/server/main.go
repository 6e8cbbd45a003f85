package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"qualis/internal/auth"
	"qualis/internal/config"
	"qualis/internal/database"
	"qualis/internal/handler"
	"qualis/internal/languages"
	"qualis/internal/middleware"
	"qualis/internal/repository/postgres"
	serviceAuth "qualis/internal/service/auth"
	"qualis/internal/service/components"
	"qualis/internal/service/qualityprofiles"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create token verifier against the identity provider's JWKS endpoint
	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and apply pending schema migrations
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := database.RunMigrations(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	componentRepo := postgres.NewComponentRepository(repoConfig)
	profileRepo := postgres.NewQualityProfileRepository(repoConfig)
	authzRepo := postgres.NewAuthorizationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load the language registry
	languageRegistry, err := languages.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load language registry: %v", err)
	}

	// Create services
	authorizer := serviceAuth.NewRoleBasedAuthorizer(authzRepo)
	componentService := components.NewComponentService(componentRepo, authorizer, txManager, logger)
	profileService := qualityprofiles.NewQualityProfileService(profileRepo, componentRepo, authorizer, logger)

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	componentHandler := handler.NewComponentHandler(componentService, logger)
	profileHandler := handler.NewQualityProfileHandler(profileService, logger)
	languageHandler := handler.NewLanguageHandler(languageRegistry, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Component routes
	mux.HandleFunc("POST /api/components/bulk_update_key", componentHandler.BulkUpdateKey)

	// Quality profile routes
	mux.HandleFunc("GET /api/qualityprofiles/projects", profileHandler.ListProjects)
	mux.HandleFunc("POST /api/qualityprofiles/add_project", profileHandler.AddProject)
	mux.HandleFunc("POST /api/qualityprofiles/remove_project", profileHandler.RemoveProject)

	// Language routes
	mux.HandleFunc("GET /api/languages/list", languageHandler.List)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
