// Package audit carries the acting principal through context so security
// sensitive operations (token issuance, secret rotation) can record who
// performed them. The surrounding identity system is an external collaborator;
// this package is the only point where its output enters the tokenization core.
package audit

import (
	"context"
)

// principalKey is a context key type for storing the acting principal.
type principalKey struct{}

// SystemPrincipal is recorded when an operation runs without an
// authenticated actor (e.g., scheduled annual rotation).
const SystemPrincipal = "system"

// WithPrincipal returns a context carrying the acting principal's name.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// Principal returns the acting principal from the context, or SystemPrincipal
// when none is set. It never fails: every operation must have an attributable
// actor, so the absence of one degrades to the system identity instead of an error.
func Principal(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey{}).(string); ok && p != "" {
		return p
	}
	return SystemPrincipal
}
