package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the token does not parse as a JWT.
var ErrMalformed = errors.New("malformed token")

// Claims are the fields the backend puts into an access token that the
// client has a use for.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Email string `json:"email"`
	jwtlib.RegisteredClaims
}

// Peek decodes the claims of token WITHOUT verifying its signature.
// Never use the result to grant anything; it is display and scheduling
// information only.
func Peek(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrMalformed
	}

	var wire wireClaims
	parser := jwtlib.NewParser()
	if _, _, err := parser.ParseUnverified(token, &wire); err != nil {
		return Claims{}, ErrMalformed
	}

	claims := Claims{
		Subject: wire.Subject,
		Email:   wire.Email,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}
	return claims, nil
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without an exp claim never report expired.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ExpiresWithin reports whether the token expires within d of now.
// Tokens without an exp claim never report true.
func (c Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(c.ExpiresAt)
}
