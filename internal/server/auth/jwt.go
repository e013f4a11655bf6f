// Package auth signs session cookies and checks stored credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the standard claims plus the session id under "sid".
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// GenerateToken signs an HS256 token for sessionID expiring at expiresAt.
func GenerateToken(sessionID uuid.UUID, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionID: sessionID.String(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSessionIDFromToken verifies tokenString and returns its session id.
// An expired token yields common.ErrSessionExpired; any other failure
// yields common.ErrInvalidToken.
func GetSessionIDFromToken(tokenString string, secretKey []byte) (uuid.UUID, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, common.ErrSessionExpired
		}
		return uuid.Nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return uuid.Nil, common.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad sid: %v", common.ErrInvalidToken, err)
	}

	return id, nil
}
