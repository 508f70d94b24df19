// Package authn issues and verifies bearer tokens identifying a ClientID,
// gating access to the websocket gateway.
package authn

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tablesync/internal/sheet"
)

// Claims identifies the ClientID a token was issued for.
type Claims struct {
	ClientID sheet.ClientID `json:"sub"`
	jwt.RegisteredClaims
}

func secret() []byte {
	s := os.Getenv("TABLESYNC_JWT_SECRET")
	if s == "" {
		s = "dev-secret"
	}
	return []byte(s)
}

// SignToken issues a token for clientID valid for ttl.
func SignToken(clientID sheet.ClientID, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseToken verifies tokenString and returns its Claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
