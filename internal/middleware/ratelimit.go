package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/middleware/ratelimiter"
	"github.com/impservers/impchat/internal/utils"
)

// RateLimit throttles per identity. The top role is never throttled so
// moderation stays possible during a flood.
func RateLimit(rl *ratelimiter.SenderRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := GetUserFromContext(r); user != nil && user.Role == domain.RoleLeader {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SenderIdentity keys the bucket by the authenticated user, falling back to
// client IP for anonymous endpoints.
func SenderIdentity(r *http.Request) (string, error) {
	if user := GetUserFromContext(r); user != nil {
		return fmt.Sprintf("user_%d", user.Id), nil
	}
	ip, err := utils.GetIP(r)
	if err != nil {
		return "", errors.New("can't identify sender")
	}
	return "ip_" + ip, nil
}
