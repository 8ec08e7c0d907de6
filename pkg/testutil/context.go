// Package testutil carries helpers shared across test packages.
package testutil

import (
	"context"
	"time"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

// ContextAs returns a context authenticated as a fresh principal with the
// given role.
func ContextAs(role domain.Role) context.Context {
	return ContextFor(domain.Principal{ID: domain.NewUserID(), Role: role})
}

// ContextFor returns a context authenticated as the given principal.
func ContextFor(p domain.Principal) context.Context {
	return requestcontext.WithPrincipal(context.Background(), p)
}

// ContextAt pins the request time, so tests control timestamps and number
// periods.
func ContextAt(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
