// Package auth verifies identity tokens presented to the wallet bridge.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ziplink/internal/common"
)

// IdentityClaims carries the stable subject and email of an authenticated
// identity provider user.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity is the verified result of an identity token.
type Identity struct {
	Subject string
	Email   string
}

// VerifyIdentityToken validates an HS256-signed identity token and returns
// the subject and email claims. Any parse, signature, or expiry failure maps
// to ErrorUnauthorized.
func VerifyIdentityToken(tokenString string, secretKey []byte) (*Identity, error) {
	claims := &IdentityClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrorUnauthorized
	}

	return &Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// GenerateIdentityToken issues a signed identity token. Used by tests and
// local tooling; production tokens come from the identity provider.
func GenerateIdentityToken(subject, email string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		Email: email,
	})
	return token.SignedString(secretKey)
}
