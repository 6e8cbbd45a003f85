package models

import "github.com/golang-jwt/jwt/v5"

// Role is a permission level a user can hold, either globally (system
// administrator) or scoped to a single project component.
type Role string

const (
	// RoleAdmin grants administration of a project, or of the whole system
	// when held globally.
	RoleAdmin Role = "admin"
	// RoleUser grants browse access to a project.
	RoleUser Role = "user"
)

// TokenClaims are the claims extracted from an access token issued by the
// external identity provider. Subject carries the user uuid.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
