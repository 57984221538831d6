package liquidation

import (
	"fmt"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// Actor identifies the authenticated user performing an operation.
// Handlers build it from JWT claims; services never read tokens themselves.
type Actor struct {
	ID             uuid.UUID
	Name           string
	Role           identity.Role
	InstitutionUII string
	Region         string
}

// requireCapability returns a permission error naming the role that holds
// the capability. Role failures are reported separately from status
// failures so clients can tell "never allowed" from "not right now".
func requireCapability(actor Actor, cap identity.Capability, requiredRole string, action string) error {
	if !actor.Role.Can(cap) {
		return shared.NewPermissionDeniedError(fmt.Sprintf("Only the %s can %s", requiredRole, action))
	}
	return nil
}

// canSeeAllInstitutions reports whether the actor's reads are unscoped.
func canSeeAllInstitutions(actor Actor) bool {
	return actor.Role != identity.RoleHEI
}
