package models

import (
	"fmt"
	"time"

	"qualis/internal/domain"
)

// Qualifier describes what kind of entity a component is in the tree.
type Qualifier string

const (
	QualifierProject   Qualifier = "TRK"
	QualifierModule    Qualifier = "BRC"
	QualifierDirectory Qualifier = "DIR"
	QualifierFile      Qualifier = "FIL"
)

// IsProjectOrModule reports whether the qualifier allows bulk key operations.
// Only project and module roots may be bulk-renamed; renaming arbitrary files
// would leave the tree keys inconsistent.
func (q Qualifier) IsProjectOrModule() bool {
	return q == QualifierProject || q == QualifierModule
}

// Component is a keyed node of a project tree (project, module, directory or
// file). Key is globally unique among enabled components.
type Component struct {
	UUID        string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Qualifier   Qualifier `json:"qualifier"`
	ParentUUID  string    `json:"parentId,omitempty"`
	ProjectUUID string    `json:"projectId,omitempty"`
	Enabled     bool      `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ComponentRef identifies a component either by id or by key, never both.
// It replaces scattered nullable-field checks with one validated value.
type ComponentRef struct {
	UUID string
	Key  string
}

// NewComponentRef validates the id-XOR-key contract at the boundary.
func NewComponentRef(uuid, key string) (ComponentRef, error) {
	if uuid == "" && key == "" {
		return ComponentRef{}, fmt.Errorf("%w: either 'id' or 'key' must be provided", domain.ErrValidation)
	}
	if uuid != "" && key != "" {
		return ComponentRef{}, fmt.Errorf("%w: either 'id' or 'key' must be provided, not both", domain.ErrValidation)
	}
	return ComponentRef{UUID: uuid, Key: key}, nil
}

// ByUUID reports whether the reference resolves by id.
func (r ComponentRef) ByUUID() bool { return r.UUID != "" }

// String returns the identifying value, for error messages.
func (r ComponentRef) String() string {
	if r.ByUUID() {
		return r.UUID
	}
	return r.Key
}
