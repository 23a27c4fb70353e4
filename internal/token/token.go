// Package token mints and verifies the backend's HS256 access tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/raseedhq/raseed/internal/identity"
)

var (
	// ErrExpired means the token was once valid but has run out.
	ErrExpired = errors.New("token expired")

	// ErrInvalid covers every other verification failure.
	ErrInvalid = errors.New("invalid token")
)

// Claims is the token payload: the identity plus the standard timing
// claims.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token for the identity, valid for the configured TTL.
func (i *Issuer) Issue(id identity.Identity) (string, error) {
	now := time.Now()

	claims := Claims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and timing claims and returns the
// identity the token carries.
func (i *Issuer) Verify(raw string) (identity.Identity, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return identity.Identity{}, ErrExpired
		}

		return identity.Identity{}, ErrInvalid
	}

	if claims.Subject == "" {
		return identity.Identity{}, ErrInvalid
	}

	return identity.Identity{
		Sub:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
