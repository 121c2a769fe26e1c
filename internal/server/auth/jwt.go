// Package auth issues and verifies bearer tokens, hashes credentials and
// generates password reset tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prajeshElEvEn/microauth/internal/common"
)

// Claims carries the user id next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// Issuer signs HS256 bearer tokens that expire after ttl.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for iat, exp and validation.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue returns a signed token for userID.
func (i *Issuer) Issue(userID string) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("%w: token secret is not set", common.ErrorConfiguration)
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// user id it carries.
func (i *Issuer) Verify(tokenString string) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("%w: token secret is not set", common.ErrorConfiguration)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrorTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrorInvalidToken
	}

	return claims.UserID, nil
}
