package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/utils/auth"
)

func Authentication(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authFunc := func(w http.ResponseWriter, r *http.Request) {
			jwtCookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelError,
					"failed to find token in request",
				)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}

			tokenStr := jwtCookie.Value
			claims, err := auth.CheckToken(tokenStr, secret)
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelError,
					"authentication failed",
					slog.Any(model.KeyLoggerError, err),
					slog.String("token", tokenStr),
				)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}

			initial := r.Context()
			idCtx := context.WithValue(
				initial, model.KeyContextUserID, claims.UserID)
			roleCtx := context.WithValue(
				idCtx, model.KeyContextRole, claims.Role)

			rWithID := r.WithContext(roleCtx)
			next.ServeHTTP(w, rWithID)
		}
		return http.HandlerFunc(authFunc)
	}
}

// RequireRole guards role-scoped routes; it must run after Authentication.
func RequireRole(role user.Role, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		roleFunc := func(w http.ResponseWriter, r *http.Request) {
			got, ok := r.Context().Value(model.KeyContextRole).(user.Role)
			if !ok || got != role {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"access denied",
					slog.String("required_role", string(role)),
				)
				http.Error(w, "access denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(roleFunc)
	}
}

// UserID extracts the authenticated user id placed by Authentication.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(model.KeyContextUserID).(string)
	return id, ok && id != ""
}
