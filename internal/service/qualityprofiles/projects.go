package qualityprofiles

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"qualis/internal/config"
	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
	"qualis/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// qualityProfileService implements the QualityProfileService interface
type qualityProfileService struct {
	profileRepo   repositories.QualityProfileRepository
	componentRepo repositories.ComponentRepository
	authorizer    services.ComponentAuthorizer
	logger        *slog.Logger
}

// NewQualityProfileService creates a new quality profile service
func NewQualityProfileService(
	profileRepo repositories.QualityProfileRepository,
	componentRepo repositories.ComponentRepository,
	authorizer services.ComponentAuthorizer,
	logger *slog.Logger,
) services.QualityProfileService {
	return &qualityProfileService{
		profileRepo:   profileRepo,
		componentRepo: componentRepo,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// ListProjects returns one page of project associations for a profile,
// restricted to projects the caller may browse. Projects the caller is not
// authorized to see are dropped silently, not reported as an error. Results
// are sorted by project name, then by uuid to keep equal names deterministic.
func (s *qualityProfileService) ListProjects(ctx context.Context, userUUID string, req *services.ProfileProjectsRequest) (*models.ProfileProjectsPage, error) {
	if err := s.validateProjectsRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	mode, err := models.ParseSelectionMode(req.Selected)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = config.DefaultPageSize
	}

	if _, err := s.profileRepo.GetByKey(ctx, req.ProfileKey); err != nil {
		return nil, err
	}

	associations, err := s.profileRepo.SelectProjectAssociations(ctx, req.ProfileKey, mode, req.Query)
	if err != nil {
		return nil, err
	}

	sort.Slice(associations, func(i, j int) bool {
		if associations[i].ProjectName != associations[j].ProjectName {
			return associations[i].ProjectName < associations[j].ProjectName
		}
		return associations[i].ProjectUUID < associations[j].ProjectUUID
	})

	projectUUIDs := make([]string, 0, len(associations))
	for _, a := range associations {
		projectUUIDs = append(projectUUIDs, a.ProjectUUID)
	}

	authorized, err := s.authorizer.KeepAuthorizedProjects(ctx, userUUID, models.RoleUser, projectUUIDs)
	if err != nil {
		return nil, err
	}

	visible := make([]models.ProjectAssociation, 0, len(authorized))
	for _, a := range associations {
		if _, ok := authorized[a.ProjectUUID]; ok {
			visible = append(visible, a)
		}
	}

	paging := models.NewPaging(page, pageSize, len(visible))
	start := paging.Offset()
	switch {
	case len(visible) <= start:
		visible = []models.ProjectAssociation{}
	case len(visible) > pageSize:
		end := min(start+pageSize, len(visible))
		visible = visible[start:end]
	}

	return &models.ProfileProjectsPage{
		Results: visible,
		More:    paging.HasNextPage(),
	}, nil
}

// validateProjectsRequest validates the listing parameters
func (s *qualityProfileService) validateProjectsRequest(req *services.ProfileProjectsRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProfileKey, validation.Required),
		validation.Field(&req.Page, validation.Min(0)),
		validation.Field(&req.PageSize, validation.Min(0), validation.Max(config.MaxPageSize)),
	)
}
