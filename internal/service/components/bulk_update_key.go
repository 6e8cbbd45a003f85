package components

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"qualis/internal/config"
	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/repositories"
	"qualis/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// componentService implements the ComponentService interface
type componentService struct {
	componentRepo repositories.ComponentRepository
	authorizer    services.ComponentAuthorizer
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewComponentService creates a new component service
func NewComponentService(
	componentRepo repositories.ComponentRepository,
	authorizer services.ComponentAuthorizer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ComponentService {
	return &componentService{
		componentRepo: componentRepo,
		authorizer:    authorizer,
		txManager:     txManager,
		logger:        logger,
	}
}

// plannedChange is one plan entry with the uuid of the component it renames.
type plannedChange struct {
	uuid      string
	key       string
	newKey    string
	duplicate bool
}

// BulkUpdateKey renames a project or module key and all descendant keys by
// replacing the first occurrence of From with To. The plan and its duplicate
// flags are always computed; a dry run stops there. A real run refuses the
// whole batch when any computed key is already taken, otherwise applies
// every change in a single transaction.
func (s *componentService) BulkUpdateKey(ctx context.Context, userUUID string, req *services.BulkUpdateKeyRequest) (*models.BulkUpdateKeyResult, error) {
	if err := s.validateBulkUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ref, err := models.NewComponentRef(req.ID, req.Key)
	if err != nil {
		return nil, err
	}

	root, err := s.resolveRoot(ctx, ref)
	if err != nil {
		return nil, err
	}

	if !root.Qualifier.IsProjectOrModule() {
		return nil, fmt.Errorf("%w: component '%s' must be a project or a module", domain.ErrValidation, root.Key)
	}

	if err := s.authorizer.CheckComponentPermission(ctx, userUUID, models.RoleAdmin, root); err != nil {
		return nil, err
	}

	plan, err := s.simulateBulkUpdate(ctx, root, req.From, req.To)
	if err != nil {
		return nil, err
	}

	result := buildResult(plan)

	if req.DryRun {
		return result, nil
	}

	if result.HasDuplicates() {
		duplicates := result.DuplicateKeys()
		sort.Strings(duplicates)
		return nil, &domain.DuplicateKeysError{Keys: slices.Compact(duplicates)}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, change := range plan {
			if err := s.componentRepo.UpdateKey(txCtx, change.uuid, change.newKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk key update applied",
		"root", root.Key,
		"from", req.From,
		"to", req.To,
		"renamed", len(plan),
		"user_id", userUUID,
	)

	return result, nil
}

// resolveRoot loads the root component by id or key
func (s *componentService) resolveRoot(ctx context.Context, ref models.ComponentRef) (*models.Component, error) {
	if ref.ByUUID() {
		return s.componentRepo.GetByUUID(ctx, ref.UUID)
	}
	return s.componentRepo.GetByKey(ctx, ref.Key)
}

// simulateBulkUpdate builds the rename plan for the subtree rooted at root,
// sorted by old key. Keys not containing from are neither renamed nor
// reported. A candidate key is flagged duplicate when an enabled component
// other than the one being renamed already bears it, or when two entries of
// the plan compute the same key; keys vacated by a sibling rename in the
// same batch still count. A non-dry run therefore only ever applies a plan
// whose keys are all free, so the updates cannot trip the unique key index.
func (s *componentService) simulateBulkUpdate(ctx context.Context, root *models.Component, from, to string) ([]plannedChange, error) {
	subtree, err := s.componentRepo.SelectSubtree(ctx, root.UUID)
	if err != nil {
		return nil, err
	}

	var plan []plannedChange
	var newKeys []string
	planned := make(map[string]int) // newKey -> occurrences within the plan

	for _, component := range subtree {
		if !strings.Contains(component.Key, from) {
			continue
		}

		newKey := strings.Replace(component.Key, from, to, 1)
		if len(newKey) > config.MaxComponentKeyLength {
			return nil, fmt.Errorf("%w: new key for '%s' is longer than %d characters", domain.ErrValidation, component.Key, config.MaxComponentKeyLength)
		}

		plan = append(plan, plannedChange{uuid: component.UUID, key: component.Key, newKey: newKey})
		planned[newKey]++
		newKeys = append(newKeys, newKey)
	}

	existing, err := s.componentRepo.SelectExistingKeys(ctx, newKeys)
	if err != nil {
		return nil, err
	}

	for i := range plan {
		holder, taken := existing[plan[i].newKey]
		plan[i].duplicate = (taken && holder != plan[i].uuid) || planned[plan[i].newKey] > 1
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].key < plan[j].key })

	return plan, nil
}

// buildResult converts the plan to the response shape
func buildResult(plan []plannedChange) *models.BulkUpdateKeyResult {
	result := &models.BulkUpdateKeyResult{Keys: make([]models.KeyChange, 0, len(plan))}
	for _, change := range plan {
		result.Keys = append(result.Keys, models.KeyChange{
			Key:       change.key,
			NewKey:    change.newKey,
			Duplicate: change.duplicate,
		})
	}
	return result
}

// validateBulkUpdateRequest validates the mandatory substitution fields
func (s *componentService) validateBulkUpdateRequest(req *services.BulkUpdateKeyRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.From, validation.Required),
		validation.Field(&req.To, validation.Required),
	)
}
