package services

import (
	"context"

	"qualis/internal/domain/models"
)

// BulkUpdateKeyRequest asks for a bulk rename of a project or module key and
// all descendant keys, replacing the first occurrence of From with To in each
// key. Exactly one of ID and Key identifies the root.
type BulkUpdateKeyRequest struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	From   string `json:"from"`
	To     string `json:"to"`
	DryRun bool   `json:"dryRun,omitempty"`
}

// ComponentService exposes component key operations.
type ComponentService interface {
	// BulkUpdateKey computes the rename plan for the subtree rooted at the
	// requested project or module and, unless DryRun is set, applies it in a
	// single transaction. The returned result is sorted by old key and is
	// produced for dry runs and applied runs alike.
	//
	// Errors: domain.ErrNotFound (unresolvable root), domain.ErrValidation
	// (root is not a project or module, missing fields), domain.ErrForbidden
	// (caller does not administer the root), *domain.DuplicateKeysError
	// (collisions on a non-dry run; nothing is mutated).
	BulkUpdateKey(ctx context.Context, userUUID string, req *BulkUpdateKeyRequest) (*models.BulkUpdateKeyResult, error)
}
