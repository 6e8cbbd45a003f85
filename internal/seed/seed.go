package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
	"qualis/internal/languages"

	"github.com/google/uuid"
)

// Repositories groups everything the seeder writes to.
type Repositories struct {
	Components repositories.ComponentRepository
	Profiles   repositories.QualityProfileRepository
	Authz      repositories.AuthorizationRepository
}

// Users created by the seeder, for local development logins.
const (
	AdminUserUUID = "seed-admin-user"
	PlainUserUUID = "seed-plain-user"
)

// Run inserts a demo component tree, quality profiles, associations and role
// grants. Existing rows are left alone; rerunning is safe.
func Run(ctx context.Context, repos Repositories, registry *languages.Registry, logger *slog.Logger) error {
	project := &models.Component{
		UUID:      uuid.New().String(),
		Key:       "my_project",
		Name:      "My Project",
		Qualifier: models.QualifierProject,
	}
	if err := createComponent(ctx, repos.Components, project); err != nil {
		return err
	}
	module := &models.Component{
		UUID:        uuid.New().String(),
		Key:         "my_project:module_a",
		Name:        "Module A",
		Qualifier:   models.QualifierModule,
		ParentUUID:  project.UUID,
		ProjectUUID: project.UUID,
	}
	if err := createComponent(ctx, repos.Components, module); err != nil {
		return err
	}

	files := []string{"src/main.go", "src/util.go"}
	for _, path := range files {
		file := &models.Component{
			UUID:        uuid.New().String(),
			Key:         fmt.Sprintf("%s:%s", module.Key, path),
			Name:        path,
			Qualifier:   models.QualifierFile,
			ParentUUID:  module.UUID,
			ProjectUUID: project.UUID,
		}
		if err := createComponent(ctx, repos.Components, file); err != nil {
			return err
		}
	}

	for _, lang := range []string{"go", "java"} {
		if !registry.Supports(lang) {
			return fmt.Errorf("unsupported seed language %q", lang)
		}
		profile := &models.QualityProfile{
			Key:      fmt.Sprintf("%s-default-%s", lang, uuid.New().String()[:8]),
			Name:     "Default",
			Language: lang,
		}
		if err := repos.Profiles.Create(ctx, profile); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return err
		}
		if lang == "go" {
			if err := repos.Profiles.AddProject(ctx, profile.Key, project.UUID); err != nil {
				return err
			}
		}
	}

	// Global admin, and a plain user who can browse the demo project
	if err := repos.Authz.Grant(ctx, AdminUserUUID, models.RoleAdmin, ""); err != nil {
		return err
	}
	if err := repos.Authz.Grant(ctx, PlainUserUUID, models.RoleUser, project.UUID); err != nil {
		return err
	}

	logger.Info("seed data created", "project", project.Key, "module", module.Key)
	return nil
}

func createComponent(ctx context.Context, repo repositories.ComponentRepository, component *models.Component) error {
	err := repo.Create(ctx, component)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConflict) {
		// Already seeded; reuse the existing row's uuid
		existing, getErr := repo.GetByKey(ctx, component.Key)
		if getErr != nil {
			return getErr
		}
		*component = *existing
		return nil
	}
	return err
}
