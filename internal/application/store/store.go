// Package store persists application records. Two implementations share one
// contract: InMemory (mutex-guarded maps, used by unit and handler tests) and
// PostgresStore (durable, uniqueness enforced by constraint).
//
// Stores are pure I/O plus the locking needed for atomicity; all lifecycle
// rules live in the service layer and the models package. Stores return
// sentinel errors; services translate them into coded domain errors.
package store

import (
	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	// Status filters to one exact lifecycle status.
	Status models.Status
	// Search is matched case-insensitively as a substring of the
	// application number.
	Search string
}

// ServiceCount is one row of the popular-services projection.
type ServiceCount struct {
	Service domain.ServiceID `json:"service_id"`
	Count   int64            `json:"application_count"`
}
