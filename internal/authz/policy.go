// Package authz is the single authorization decision point: a pure function
// of (role, ownership) with no state. Every mutating or cross-principal read
// operation consults it before touching a store; nothing downstream trusts a
// client-supplied flag.
package authz

import (
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

// Action enumerates everything the policy can be asked about.
type Action string

const (
	ActionSubmitApplication   Action = "submit_application"
	ActionReadApplication     Action = "read_application"
	ActionListAllApplications Action = "list_all_applications"
	ActionUpdateStatus        Action = "update_application_status"
	ActionManageCatalog       Action = "manage_service_catalog"
	ActionManageUsers         Action = "manage_users"
	ActionViewAdminStats      Action = "view_admin_stats"
)

// capabilities is the single source of truth for role permissions.
// ActionReadApplication is absent on purpose: reads are decided by
// CheckOwnerOrStaff, which also admits the owning applicant.
var capabilities = map[domain.Role]map[Action]bool{
	domain.RoleUser: {
		ActionSubmitApplication: true,
	},
	domain.RoleStaff: {
		ActionReadApplication:     true,
		ActionListAllApplications: true,
		ActionUpdateStatus:        true,
	},
	domain.RoleAdmin: {
		ActionReadApplication:     true,
		ActionListAllApplications: true,
		ActionUpdateStatus:        true,
		ActionManageCatalog:       true,
		ActionManageUsers:         true,
		ActionViewAdminStats:      true,
	},
}

// Allows reports whether the principal's role grants the action.
func Allows(p domain.Principal, action Action) bool {
	if p.IsZero() || !p.Role.IsValid() {
		return false
	}
	return capabilities[p.Role][action]
}

// Check returns a coded error unless the principal's role grants the action.
// Errors: CodeUnauthorized when no principal is present, CodeForbidden when
// the role lacks the capability.
func Check(p domain.Principal, action Action) error {
	if p.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !Allows(p, action) {
		return dErrors.New(dErrors.CodeForbidden, "access denied")
	}
	return nil
}

// CheckOwnerOrStaff authorizes reading a single application: staff and admin
// may read any, the owning applicant may read their own, everyone else is
// denied.
func CheckOwnerOrStaff(p domain.Principal, applicant domain.UserID) error {
	if p.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if Allows(p, ActionReadApplication) {
		return nil
	}
	if p.ID == applicant {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "access denied")
}
