package models

import dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"

// Status is the application's position in the review lifecycle.
// pending is the sole initial state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under-review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

var validStatuses = map[Status]bool{
	StatusPending:     true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
}

// ParseStatus constructs a Status from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	return st, nil
}

// IsValid checks the status against the closed set.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo is the single decision point for transition legality.
// Review staff may currently move an application between any of the four
// statuses, including away from approved/rejected; correcting a mistaken
// decision is allowed. Tightening the graph (e.g. making approved terminal)
// means changing only this method.
func (s Status) CanTransitionTo(next Status) bool {
	return s.IsValid() && next.IsValid()
}

// PaymentStatus tracks fee settlement, independent of review status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// IsValid checks the payment status against the closed set.
func (p PaymentStatus) IsValid() bool {
	return p == PaymentPending || p == PaymentCompleted || p == PaymentFailed
}
