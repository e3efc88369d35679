// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

const (
	AccountIDKey   contextKey = "account_id"
	RoleKey        contextKey = "role"
	PermissionsKey contextKey = "permissions"
	ClaimsKey      contextKey = "jwt_claims"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// RevocationChecker rejects access tokens that were invalidated before
// their natural expiry, either individually (jti blacklist) or wholesale
// (token version bump on logout-all). Lookup failures fail open: a redis
// outage must not lock every operator out.
type RevocationChecker interface {
	IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	ValidateTokenVersion(
		ctx context.Context,
		accountID string,
		tokenVersion int,
	) error
}

type AccessTokenClaims struct {
	AccountID    string
	Role         rbac.Role
	Permissions  []string
	TokenVersion int
	JTI          string
	ExpiresAt    time.Time
}

func Authenticator(
	verifier TokenVerifier,
	revocation RevocationChecker,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if revocation != nil {
				if claims.JTI != "" {
					revoked, err := revocation.IsAccessTokenBlacklisted(
						r.Context(),
						claims.JTI,
					)
					if err != nil {
						slog.Warn("blacklist check failed, failing open",
							"error", err,
						)
					} else if revoked {
						core.JSONError(w, core.TokenRevokedError())
						return
					}
				}

				err := revocation.ValidateTokenVersion(
					r.Context(),
					claims.AccountID,
					claims.TokenVersion,
				)
				if errors.Is(err, core.ErrTokenRevoked) {
					core.JSONError(w, core.TokenRevokedError())
					return
				}
				if err != nil {
					slog.Warn("token version check failed, failing open",
						"error", err,
					)
				}
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, AccountIDKey, claims.AccountID)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			ctx = context.WithValue(ctx, PermissionsKey, claims.Permissions)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireDashboardRole blocks tokens whose role is not one of the known
// operator roles. Fine-grained checks against the permission matrix happen
// in the services; this is the coarse gate on the admin surface.
func RequireDashboardRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := GetActor(r.Context())

		if actor.ID == "" {
			core.JSONError(
				w,
				core.UnauthorizedError("authentication required"),
			)
			return
		}

		if !actor.Role.IsValid() {
			core.JSONError(
				w,
				core.ForbiddenError("operator role required"),
			)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequireRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	roleSet := make(map[rbac.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActor(r.Context())

			if actor.ID == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := roleSet[actor.Role]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetAccountID(ctx context.Context) string {
	if id, ok := ctx.Value(AccountIDKey).(string); ok {
		return id
	}
	return ""
}

func GetRole(ctx context.Context) rbac.Role {
	if role, ok := ctx.Value(RoleKey).(rbac.Role); ok {
		return role
	}
	return ""
}

func GetPermissions(ctx context.Context) []string {
	if perms, ok := ctx.Value(PermissionsKey).([]string); ok {
		return perms
	}
	return nil
}

// GetActor assembles the rbac actor the services check against.
func GetActor(ctx context.Context) rbac.Actor {
	return rbac.Actor{
		ID:          GetAccountID(ctx),
		Role:        GetRole(ctx),
		Permissions: GetPermissions(ctx),
	}
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetAccountID(ctx) != ""
}
