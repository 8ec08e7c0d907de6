// Package domain holds shared value types used across modules: typed entity
// IDs and the role enumeration.
//
// IDs are distinct named types over uuid.UUID so the compiler rejects
// cross-type assignment (an ApplicationID can never be passed where a UserID
// is expected). Construct from external input via the Parse* functions, which
// enforce the trust-boundary invariant: IDs must be valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

type (
	// UserID identifies a principal (applicant, staff, or admin).
	UserID uuid.UUID

	// ApplicationID is the opaque internal identity of an application.
	// Distinct from the human-facing application number.
	ApplicationID uuid.UUID

	// ServiceID identifies an entry in the service catalog.
	ServiceID uuid.UUID
)

// NewUserID allocates a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewApplicationID allocates a fresh random application ID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewServiceID allocates a fresh random service ID.
func NewServiceID() ServiceID { return ServiceID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ServiceID) String() string     { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id UserID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id ServiceID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }

// ParseUserID constructs a UserID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseApplicationID constructs an ApplicationID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application id")
	return ApplicationID(u), err
}

// ParseServiceID constructs a ServiceID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseServiceID(s string) (ServiceID, error) {
	u, err := parseUUID(s, "service id")
	return ServiceID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", label)
	}
	return u, nil
}
