package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("jwt secret is empty")

// NewStaffToken выпускает JWT для сотрудника кассы с заданным временем жизни.
// Токены подписываются тем же секретом, который проверяет jwtmiddleware.
func NewStaffToken(staffID, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if staffID == "" {
		return "", errors.New("staff id is empty")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": staffID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
