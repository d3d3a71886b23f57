package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims accepted by the direct debit service.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
	// CreditorIDs lists the SEPA creditor scheme identifiers the caller may
	// collect for. Admins are not restricted.
	CreditorIDs []string `json:"creditor_ids,omitempty"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the claims include at least one of roles.
func (c Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// MayCollectFor reports whether the caller may initiate collections on
// behalf of the given creditor scheme identifier.
func (c Claims) MayCollectFor(creditorID string) bool {
	if c.HasRole(RoleAdmin) {
		return true
	}
	return slices.Contains(c.CreditorIDs, creditorID)
}

// Role constants
const (
	RoleAdmin     = "admin"
	RoleCollector = "sepa_collector"
	RoleAuditor   = "auditor"
)
