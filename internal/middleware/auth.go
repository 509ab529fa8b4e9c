// Package middleware carries the HTTP cross-cutting layers: authentication
// and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/impservers/impchat/internal/domain"
	jwt_internal "github.com/impservers/impchat/internal/jwt"
	"github.com/impservers/impchat/internal/moderation"
	"github.com/impservers/impchat/internal/utils"
)

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService    jwt_internal.JwtService
	secureCookies bool
}

func NewAuth(jwtService jwt_internal.JwtService, secureCookies bool) *Auth {
	return &Auth{jwtService: jwtService, secureCookies: secureCookies}
}

// NeedAuth returns middleware that requires a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// LeaderOnly returns middleware that additionally requires the top role.
// It gates the admin surface; services re-check per action.
func (a *Auth) LeaderOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

// ExtractUser pulls the caller identity out of the request token. Browser
// clients carry it in a cookie, API clients in the Authorization header.
func (a *Auth) ExtractUser(r *http.Request) (*domain.User, error) {
	var tokenString string
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}
	return jwt_internal.UserFromToken(token)
}

// Sentinel error for ExtractUser
var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

func (a *Auth) auth(leaderOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.ExtractUser(r)
			if err != nil {
				if err == errNoToken {
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			if leaderOnly && !moderation.Allowed(user.Role, moderation.ActionUpdateAccount) {
				http.Error(w, "Access denied", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the user from the context
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
