package domain

import dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"

// Role determines which actions a principal may perform.
// Invariant: the value must be one of the closed set below; authorization
// decisions key off this enum, never off raw strings from storage or tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleUser:  true,
	RoleStaff: true,
	RoleAdmin: true,
}

// ParseRole constructs a Role from external input (token claims, stored rows,
// admin requests). Direct casting bypasses validation.
//
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks the role against the closed set.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// Principal is the authenticated caller: an identity plus a role. It is set
// by the auth middleware and consumed by services through requestcontext.
type Principal struct {
	ID   UserID
	Role Role
}

// IsZero reports whether no principal is present.
func (p Principal) IsZero() bool {
	return p.ID.IsZero() && p.Role == ""
}
