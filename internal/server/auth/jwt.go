// Package auth issues and checks the HS256 bearer tokens of the HTTP API.
// Identity itself is delegated to an external provider; a token only
// carries the principal's uid and e-mail.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the principal.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
}

func GenerateToken(p Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: p.UserID,
		Email:  p.Email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken returns common.ErrorTokenExpired for an expired token and
// common.ErrorInvalidToken for anything else that does not verify.
func ParseToken(tokenString string, secretKey []byte) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, common.ErrorTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", common.ErrorInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return Principal{}, common.ErrorInvalidToken
	}
	return Principal{UserID: claims.UserID, Email: claims.Email}, nil
}
