package qualityprofiles

import (
	"context"
	"fmt"

	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/services"
)

// AddProject associates a project with a profile. Requires administration
// rights on the project. Idempotent.
func (s *qualityProfileService) AddProject(ctx context.Context, userUUID string, req *services.ProfileProjectRequest) error {
	profile, project, err := s.resolveAssociation(ctx, userUUID, req)
	if err != nil {
		return err
	}

	if err := s.profileRepo.AddProject(ctx, profile.Key, project.UUID); err != nil {
		return err
	}

	s.logger.Info("project associated with profile",
		"profile", profile.Key,
		"project", project.Key,
		"user_id", userUUID,
	)
	return nil
}

// RemoveProject dissociates a project from a profile. Requires
// administration rights on the project. Idempotent.
func (s *qualityProfileService) RemoveProject(ctx context.Context, userUUID string, req *services.ProfileProjectRequest) error {
	profile, project, err := s.resolveAssociation(ctx, userUUID, req)
	if err != nil {
		return err
	}

	if err := s.profileRepo.RemoveProject(ctx, profile.Key, project.UUID); err != nil {
		return err
	}

	s.logger.Info("project dissociated from profile",
		"profile", profile.Key,
		"project", project.Key,
		"user_id", userUUID,
	)
	return nil
}

// resolveAssociation resolves and authorizes both sides of an association request
func (s *qualityProfileService) resolveAssociation(ctx context.Context, userUUID string, req *services.ProfileProjectRequest) (*models.QualityProfile, *models.Component, error) {
	if req.ProfileKey == "" {
		return nil, nil, fmt.Errorf("%w: 'profileKey' is required", domain.ErrValidation)
	}

	ref, err := models.NewComponentRef(req.ProjectID, req.ProjectKey)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.profileRepo.GetByKey(ctx, req.ProfileKey)
	if err != nil {
		return nil, nil, err
	}

	var project *models.Component
	if ref.ByUUID() {
		project, err = s.componentRepo.GetByUUID(ctx, ref.UUID)
	} else {
		project, err = s.componentRepo.GetByKey(ctx, ref.Key)
	}
	if err != nil {
		return nil, nil, err
	}

	if project.Qualifier != models.QualifierProject {
		return nil, nil, fmt.Errorf("%w: component '%s' is not a project", domain.ErrValidation, project.Key)
	}

	if err := s.authorizer.CheckComponentPermission(ctx, userUUID, models.RoleAdmin, project); err != nil {
		return nil, nil, err
	}

	return profile, project, nil
}
