package middleware

import (
	"context"
	"net/http"

	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/session"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

// WithSession resolves the request to a principal and stores it in the
// context. Every request gets a principal; a missing or expired session
// means guest. Authorization decisions belong to the policy package, not
// here.
func WithSession(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok string
			if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			}
			p := mgr.Principal(r.Context(), tok)
			if tok != "" && !p.Authenticated() {
				// Clear a dead cookie so the browser stops sending it.
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
			}
			ctx := context.WithValue(r.Context(), ctxPrincipal, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the request's principal; guest when none was set.
func PrincipalFrom(ctx context.Context) models.Principal {
	if p, ok := ctx.Value(ctxPrincipal).(models.Principal); ok {
		return p
	}
	return models.Guest()
}

// ContextWithPrincipal injects a principal, for tests and internal calls.
func ContextWithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// RequireAuth blocks guests with a generic message. Used on routes that
// make no sense without a session; fine-grained decisions still go through
// the policy.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !PrincipalFrom(r.Context()).Authenticated() {
			utils.Error(w, http.StatusUnauthorized, "not authorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
