package identity

import (
	"fmt"

	"github.com/chedfms/liqtrack/internal/domain/shared"
)

// Role is the closed set of roles in the liquidation workflow. Authorization
// decisions go through the capability table, never through string comparison
// against request input.
type Role string

const (
	RoleHEI                 Role = "hei"
	RoleRegionalCoordinator Role = "regional_coordinator"
	RoleAccountant          Role = "accountant"
	RoleAdmin               Role = "admin"
	RoleSuperAdmin          Role = "super_admin"
)

// AllRoles lists every valid role.
func AllRoles() []Role {
	return []Role{
		RoleHEI,
		RoleRegionalCoordinator,
		RoleAccountant,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// ParseRole converts a stored or submitted string into a Role.
// Unknown values are rejected so a mistyped role can never grant access.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHEI, RoleRegionalCoordinator, RoleAccountant, RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	default:
		return "", shared.NewValidationError(fmt.Sprintf("Unknown role: %s", s))
	}
}

// IsValid reports whether the role is a member of the closed set.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// DisplayName returns the human-readable role name used in error messages.
func (r Role) DisplayName() string {
	switch r {
	case RoleHEI:
		return "HEI"
	case RoleRegionalCoordinator:
		return "Regional Coordinator"
	case RoleAccountant:
		return "Accountant"
	case RoleAdmin:
		return "Admin"
	case RoleSuperAdmin:
		return "Super Admin"
	default:
		return string(r)
	}
}

// Capability is a named permission checked by application services.
type Capability string

const (
	CapCreateLiquidation   Capability = "liquidation:create"
	CapUpdateLiquidation   Capability = "liquidation:update"
	CapEndorseToAccounting Capability = "liquidation:endorse_to_accounting"
	CapReturnToHEI         Capability = "liquidation:return_to_hei"
	CapEndorseToCOA        Capability = "liquidation:endorse_to_coa"
	CapReturnToRC          Capability = "liquidation:return_to_rc"
	CapManageTracking      Capability = "liquidation:manage_tracking"
	CapManageRunningData   Capability = "liquidation:manage_running_data"
	CapBulkImport          Capability = "liquidation:bulk_import"
	CapUploadDocuments     Capability = "liquidation:upload_documents"
	CapViewAllRegions      Capability = "liquidation:view_all_regions"
	CapManageUsers         Capability = "identity:manage_users"
)

// roleCapabilities is the single source of truth for role authorization.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleHEI: {
		CapCreateLiquidation: true,
		CapUpdateLiquidation: true,
		CapUploadDocuments:   true,
	},
	RoleRegionalCoordinator: {
		CapUpdateLiquidation:   true,
		CapEndorseToAccounting: true,
		CapReturnToHEI:         true,
		CapManageTracking:      true,
		CapManageRunningData:   true,
		CapBulkImport:          true,
		CapUploadDocuments:     true,
	},
	RoleAccountant: {
		CapEndorseToCOA: true,
		CapReturnToRC:   true,
	},
	RoleAdmin: {
		CapCreateLiquidation: true,
		CapUpdateLiquidation: true,
		CapManageTracking:    true,
		CapManageRunningData: true,
		CapBulkImport:        true,
		CapUploadDocuments:   true,
		CapViewAllRegions:    true,
		CapManageUsers:       true,
	},
}

// Can reports whether the role holds the given capability.
// SuperAdmin holds every capability.
func (r Role) Can(cap Capability) bool {
	if r == RoleSuperAdmin {
		return true
	}
	return roleCapabilities[r][cap]
}

// Capabilities returns the capability set granted to the role.
func (r Role) Capabilities() []Capability {
	all := []Capability{
		CapCreateLiquidation,
		CapUpdateLiquidation,
		CapEndorseToAccounting,
		CapReturnToHEI,
		CapEndorseToCOA,
		CapReturnToRC,
		CapManageTracking,
		CapManageRunningData,
		CapBulkImport,
		CapUploadDocuments,
		CapViewAllRegions,
		CapManageUsers,
	}
	caps := make([]Capability, 0, len(all))
	for _, c := range all {
		if r.Can(c) {
			caps = append(caps, c)
		}
	}
	return caps
}
