package jwt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/impservers/impchat/internal/domain"
	internal_errors "github.com/impservers/impchat/internal/errors"
)

type JwtService interface {
	NewToken(user domain.User) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey, ttl}
}

// NewToken issues an HS256 token carrying the identity the middleware needs:
// id, display name and role. A role change takes effect on the next login,
// when a fresh token is issued.
func (j *Jwt) NewToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{
		"uid":  user.Id,
		"name": user.Name,
		"role": string(user.Role),
		"exp":  time.Now().Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message:    fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]),
				StatusCode: http.StatusUnauthorized,
			}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, internal_errors.NewUnauthorized("Invalid token signature")
	}
	if !token.Valid {
		return nil, internal_errors.NewUnauthorized("Invalid access token")
	}
	return token, nil
}

// UserFromToken rebuilds the caller identity from decoded claims.
func UserFromToken(token *jwt.Token) (*domain.User, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, internal_errors.NewUnauthorized("Invalid token claims")
	}

	uidFloat, ok := claims["uid"].(float64)
	if !ok {
		return nil, internal_errors.NewUnauthorized("Invalid token claims")
	}
	name, ok := claims["name"].(string)
	if !ok {
		return nil, internal_errors.NewUnauthorized("Invalid token claims")
	}
	roleStr, ok := claims["role"].(string)
	if !ok || !domain.ValidRole(domain.Role(roleStr)) {
		return nil, internal_errors.NewUnauthorized("Invalid token claims")
	}

	return &domain.User{
		Id:   int64(uidFloat),
		Name: name,
		Role: domain.Role(roleStr),
	}, nil
}
