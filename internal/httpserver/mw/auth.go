package mw

import (
	"context"
	"fmt"
	"net/http"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/catalog"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

type ctxKey int

const principalKey ctxKey = 0

// PrincipalFrom returns the authenticated principal stored by RequireRole.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

// RequireRole authenticates the request with HTTP basic auth against the
// account store and gates it on the required role. Super passes every gate.
// Missing or bad credentials get a 401 challenge; a valid login with an
// insufficient role gets 403.
func RequireRole(core *catalog.Service, required domain.Role, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				challenge(w, required)
				return
			}

			principal, err := core.Authenticate(r.Context(), username, password)
			if err != nil {
				log.Debug("authentication failed",
					logger.String("username", username))
				challenge(w, required)
				return
			}

			if !principal.Role.Satisfies(required) {
				log.Warn("role check failed",
					logger.String("username", username),
					logger.String("role", string(principal.Role)),
					logger.String("required", string(required)))
				http.Error(w, fmt.Sprintf("Access denied. Required role: %s", required), http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func challenge(w http.ResponseWriter, required domain.Role) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", "Login as "+string(required)))
	http.Error(w, "Could not verify your access.\nLogin required.", http.StatusUnauthorized)
}
