package models

import (
	"fmt"
	"strings"
	"time"

	"qualis/internal/domain"
)

// QualityProfile is a named rule configuration for one language.
type QualityProfile struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

// SelectionMode filters project associations relative to a profile.
type SelectionMode string

const (
	SelectionSelected   SelectionMode = "selected"
	SelectionDeselected SelectionMode = "deselected"
	SelectionAll        SelectionMode = "all"
)

// ParseSelectionMode parses the 'selected' request parameter. An empty value
// means all; unknown values are a validation error.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(s) {
	case "":
		return SelectionAll, nil
	case string(SelectionSelected):
		return SelectionSelected, nil
	case string(SelectionDeselected):
		return SelectionDeselected, nil
	case string(SelectionAll):
		return SelectionAll, nil
	default:
		return "", fmt.Errorf("%w: value of parameter 'selected' (%s) must be one of: [selected, deselected, all]", domain.ErrValidation, s)
	}
}

// ProjectAssociation is a project row relative to a quality profile: the
// project and whether it is currently associated with the profile.
type ProjectAssociation struct {
	ProjectUUID string `json:"id"`
	ProjectKey  string `json:"key"`
	ProjectName string `json:"name"`
	Selected    bool   `json:"selected"`
}

// ProfileProjectsPage is one page of project associations plus a flag telling
// whether a next page exists.
type ProfileProjectsPage struct {
	Results []ProjectAssociation `json:"results"`
	More    bool                 `json:"more"`
}
