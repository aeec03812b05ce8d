package security

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated operator as the sheet service reported it.
type Identity struct {
	Login          string `json:"unique_name"`
	Role           string `json:"role"`
	EmployeeStatus string `json:"employeeStatus"`
}

// IdentityClaims includes Identity and standard JWT claims.
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

// IsAdmin reports whether the identity may change admin settings.
func (i Identity) IsAdmin() bool {
	return i.Role == "admin" || i.Role == "master"
}

// CreateIdentityToken signs an HS256 token for the identity. The secret is
// carried base64-encoded in configuration.
func CreateIdentityToken(identity Identity, base64Secret string, ttl time.Duration) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}
	claims := IdentityClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "packtrack",
			Subject:   identity.Login,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseIdentityToken validates a token and returns its identity.
func ParseIdentityToken(tokenStr, base64Secret string) (*Identity, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, err
	}

	var claims IdentityClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &claims.Identity, nil
}
