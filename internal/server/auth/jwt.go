// Package auth signs and verifies session tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims binds a session to a user and to the token version the user had
// when the session was issued.
type Claims struct {
	jwt.RegisteredClaims
	UserID       int64  `json:"id"`
	Username     string `json:"username"`
	TokenVersion int    `json:"tokenVersion"`
}

// GenerateToken signs an HS256 session token that expires validityDuration
// after now.
func GenerateToken(userID int64, username string, tokenVersion int, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:       userID,
		Username:     username,
		TokenVersion: tokenVersion,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString. Expired tokens
// fail with common.ErrTokenExpired, anything else with common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
