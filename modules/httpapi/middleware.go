package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/pkg/session"
)

const sessionCookie = "pk_session"

// requireSession resolves the bearer token (Authorization header or
// cookie), validates it and mints the tenant scope for downstream handlers.
func requireSession(sessions *session.Manager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, r, log, session.ErrSessionNotFound)
				return
			}

			sess, err := sessions.Validate(r.Context(), token)
			if err != nil {
				writeError(w, r, log, err)
				return
			}

			ctx := cabinet.WithScope(r.Context(), cabinet.NewScope(sess.CabinetID))
			ctx = session.WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// scopeFrom pulls the tenant scope the middleware stored. Reaching a
// scoped handler without one is a programming error, answered with 401
// rather than a panic.
func scopeFrom(w http.ResponseWriter, r *http.Request, log *slog.Logger) (cabinet.Scope, bool) {
	scope, ok := cabinet.ScopeFromContext(r.Context())
	if !ok {
		writeError(w, r, log, session.ErrSessionNotFound)
		return cabinet.Scope{}, false
	}
	return scope, true
}
