package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Claims are the registered claims the API puts in its access tokens
type Claims struct {
	Subject   string     `json:"sub"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
}

// Expired reports whether the token is past its expiry at now. A token
// without exp never expires.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Remaining returns the time left until expiry, or 0 when expired or unknown
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil || c.Expired(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Parse decodes the claims of an access token without verifying its
// signature. The client has no key; the server remains the authority and the
// result is only for display.
func Parse(accessToken string) (*Claims, error) {
	parser := jwt.NewParser()

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, mc); err != nil {
		return nil, goerr.Wrap(auth.ErrMalformedToken, "failed to parse access token",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("reason", err.Error()))
	}

	claims := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		claims.ExpiresAt = &t
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		claims.IssuedAt = &t
	}

	return claims, nil
}
