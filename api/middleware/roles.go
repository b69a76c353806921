package middleware

import (
	"net/http"

	"github.com/markethive/accounts-backend/api/responses"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
)

func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates staff-only routes. The admin role is the coarse check;
// finer module access lives in the rbac service.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRole("admin", logg)
}
