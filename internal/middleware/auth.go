package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"herdbook/internal/auth"
	apierrors "herdbook/internal/errors"
	"herdbook/internal/infrastructure"
)

// UserIDHeader names the caller as resolved by the hosted backend's gateway
const UserIDHeader = "X-User-ID"

const userIDKey contextKey = "user-id"

// GetUserID returns the user id stored by RequireRole
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RoleGuard gates routes on a role held by the calling user
type RoleGuard struct {
	checker      auth.RoleChecker
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
}

// NewRoleGuard creates a guard. A nil checker disables role checks.
func NewRoleGuard(checker auth.RoleChecker, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *RoleGuard {
	return &RoleGuard{
		checker:      checker,
		errorHandler: errorHandler,
		metrics:      metrics,
		logger:       infrastructure.WithComponent(logger, "role_guard"),
	}
}

// RequireRole lets a request through only when its user holds role.
// Missing user id answers 401, a denied role 403 and a failed lookup 503.
func (g *RoleGuard) RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if g.checker == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				g.metrics.RecordRoleCheck(ctx, role, "anonymous")
				g.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
				return
			}

			ok, err := g.checker.HasRole(ctx, userID, role)
			if err != nil {
				g.metrics.RecordRoleCheck(ctx, role, "error")
				g.logger.ErrorContext(ctx, "role lookup failed",
					slog.String("user_id", userID),
					slog.String("role", role),
					slog.String("error", err.Error()))
				g.errorHandler.HandleError(w, r, apierrors.ErrRoleLookupFailed)
				return
			}
			if !ok {
				g.metrics.RecordRoleCheck(ctx, role, "denied")
				g.logger.WarnContext(ctx, "role denied",
					slog.String("user_id", userID),
					slog.String("role", role))
				g.errorHandler.HandleError(w, r, apierrors.ForbiddenRole(role))
				return
			}

			g.metrics.RecordRoleCheck(ctx, role, "granted")
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userIDKey, userID)))
		})
	}
}
