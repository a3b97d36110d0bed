package middlewares

import (
	"context"
	"net/http"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"strings"

	"go.uber.org/zap"
)

// Authenticate verifies the bearer token of every non public path and stores
// the raw token, the subject and the roles in the request context.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.InternalConfig.Security.Enabled || m.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, constvars.AuthorizationBearerPrefix) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constvars.AuthorizationBearerPrefix))

		claims, err := m.TokenVerifier.Verify(r.Context(), token)
		if err != nil {
			m.Log.Warn("Middlewares.Authenticate rejected token",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
				zap.Error(err),
			)
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_AUTH_TOKEN_KEY, token)
		ctx = context.WithValue(ctx, constvars.CONTEXT_AUTH_SUBJECT_KEY, claims.Subject)
		ctx = context.WithValue(ctx, constvars.CONTEXT_AUTH_ROLES_KEY, claims.Roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole answers 403 unless the authenticated caller holds role.
func (m *Middlewares) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.InternalConfig.Security.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			roles, _ := r.Context().Value(constvars.CONTEXT_AUTH_ROLES_KEY).([]string)
			if !utils.Contains(roles, role) {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingRole(nil, role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middlewares) isPublic(path string) bool {
	for _, public := range m.InternalConfig.Security.Publics {
		if path == public || strings.HasPrefix(path, strings.TrimSuffix(public, "/")+"/") {
			return true
		}
	}
	return false
}
