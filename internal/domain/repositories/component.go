package repositories

import (
	"context"

	"qualis/internal/domain/models"
)

// ComponentRepository provides access to the component tree.
type ComponentRepository interface {
	// GetByUUID retrieves an enabled component by uuid.
	// Returns domain.ErrNotFound if no such component exists.
	GetByUUID(ctx context.Context, uuid string) (*models.Component, error)

	// GetByKey retrieves an enabled component by key.
	// Returns domain.ErrNotFound if no such component exists.
	GetByKey(ctx context.Context, key string) (*models.Component, error)

	// SelectSubtree returns the component identified by rootUUID and all of
	// its enabled descendants, in no particular order.
	SelectSubtree(ctx context.Context, rootUUID string) ([]models.Component, error)

	// SelectExistingKeys reports which of the given keys are already taken,
	// mapping each existing key to the uuid of the enabled component bearing it.
	// Keys not present in the result are free.
	SelectExistingKeys(ctx context.Context, keys []string) (map[string]string, error)

	// UpdateKey persists a new key for a component. Participates in a
	// context transaction when one is present.
	UpdateKey(ctx context.Context, uuid, newKey string) error

	// Create inserts a component (used by seeding).
	Create(ctx context.Context, component *models.Component) error
}
