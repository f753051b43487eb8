package cabinet

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Scope is a capability handle bound to one cabinet. Tenant-scoped store
// methods take a Scope instead of a raw UUID, so a query that forgets the
// tenant filter does not compile. Scopes are minted by the auth layer after
// session validation, never constructed from request input directly.
type Scope struct {
	cabinetID uuid.UUID
}

// NewScope binds a scope to a cabinet ID.
func NewScope(cabinetID uuid.UUID) Scope {
	return Scope{cabinetID: cabinetID}
}

// CabinetID returns the cabinet this scope is bound to.
func (s Scope) CabinetID() uuid.UUID {
	return s.cabinetID
}

// IsZero reports whether the scope is unbound.
func (s Scope) IsZero() bool {
	return s.cabinetID == uuid.Nil
}

type scopeCtxKey struct{}

// WithScope attaches a scope to the context.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, s)
}

// ScopeFromContext retrieves the scope from the context.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeCtxKey{}).(Scope)
	return s, ok && !s.IsZero()
}

// LoggerExtractor injects the cabinet ID into log records when a scope is
// present on the context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if s, ok := ScopeFromContext(ctx); ok {
			return slog.String("cabinet_id", s.CabinetID().String()), true
		}
		return slog.Attr{}, false
	}
}
