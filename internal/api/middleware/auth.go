package middleware

import (
	"context"
	"net/http"

	"system_sentinel/internal/common"
	"system_sentinel/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const userCtxKey contextKey = "currentUser"

// TokenResolver turns a presented bearer token into a user identity.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// The single message returned for every authentication failure: missing
// header, bad signature, expired token, unknown subject. Which check failed
// is never revealed to the caller.
const credentialsMessage = "Could not validate credentials"

// Authenticator extracts the bearer token from the Authorization header,
// resolves it to a user and stores the identity in the request context.
func Authenticator(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				common.RespondWithError(w, http.StatusUnauthorized, credentialsMessage)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil || user == nil {
				common.RespondWithError(w, http.StatusUnauthorized, credentialsMessage)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive passes only requests whose resolved user is active. A
// missing identity fails closed as unauthorized.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, credentialsMessage)
			return
		}
		if !user.IsActive {
			common.RespondWithError(w, http.StatusBadRequest, "Inactive user")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireElevated passes only requests whose resolved user is a superuser.
// A missing identity fails closed as unauthorized.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, credentialsMessage)
			return
		}
		if !user.IsSuperuser {
			common.RespondWithError(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the identity resolved by Authenticator.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*model.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
