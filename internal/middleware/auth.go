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

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
)

const ClaimsKey contextKey = "jwt_claims"

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// ActorResolver loads the current actor for a token subject.
type ActorResolver interface {
	ResolveActor(ctx context.Context, id string) (access.Actor, error)
}

type AccessTokenClaims struct {
	UserID    string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator requires a valid session token and stores the resolved
// actor in the request context. The role is read from the identity store
// on every request, not from the token.
func Authenticator(
	verifier TokenVerifier,
	resolver ActorResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication credentials were not provided"),
				)
				return
			}

			ctx, err := authenticate(r.Context(), verifier, resolver, token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the actor when a valid token is present and falls
// through as anonymous otherwise.
func OptionalAuth(
	verifier TokenVerifier,
	resolver ActorResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" {
				ctx, err := authenticate(r.Context(), verifier, resolver, token)
				if err == nil {
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(
	ctx context.Context,
	verifier TokenVerifier,
	resolver ActorResolver,
	token string,
) (context.Context, error) {
	claims, err := verifier.VerifyAccessToken(ctx, token)
	if err != nil {
		return ctx, err
	}

	actor, err := resolver.ResolveActor(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ctx, core.ErrTokenInvalid
		}
		return ctx, err
	}

	ctx = access.WithActor(ctx, actor)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return ctx, nil
}

// Require is a collection-level gate: the action is derived from the
// method alone and no resource is supplied.
func Require(policy access.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action, ok := access.ActionFor(r.Method, false)
			if !ok {
				core.JSONError(w, core.ForbiddenError(""))
				return
			}

			if !Authorize(w, r, policy, action, nil) {
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Authorize evaluates policy for the request's actor. On deny it writes
// 401 or 403 and returns false.
func Authorize(
	w http.ResponseWriter,
	r *http.Request,
	policy access.Policy,
	action access.Action,
	res access.Resource,
) bool {
	actor := access.FromContext(r.Context())

	switch access.Authorize(policy, actor, action, res) {
	case access.Allow:
		return true
	case access.Unauthenticated:
		core.JSONError(
			w,
			core.UnauthorizedError("authentication credentials were not provided"),
		)
		return false
	case access.Forbidden:
		core.JSONError(
			w,
			core.ForbiddenError("you do not have permission to perform this action"),
		)
		return false
	default:
		core.JSONError(w, core.ForbiddenError(""))
		return false
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
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		slog.Error("authentication failed", "error", err)
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}
