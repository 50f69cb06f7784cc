package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/service/token"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	gt.NoError(t, err).Required()
	return s
}

func TestParse(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	raw := sign(t, jwt.MapClaims{
		"sub": "user-42",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	claims, err := token.Parse(raw)
	gt.NoError(t, err).Required()
	gt.Equal(t, claims.Subject, "user-42")
	gt.NotNil(t, claims.ExpiresAt)
	gt.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
	gt.False(t, claims.Expired(now))
	gt.Equal(t, claims.Remaining(now), time.Hour)
	gt.True(t, claims.Expired(now.Add(2*time.Hour)))
	gt.Equal(t, claims.Remaining(now.Add(2*time.Hour)), time.Duration(0))
}

func TestParse_WithoutExpiry(t *testing.T) {
	claims, err := token.Parse(sign(t, jwt.MapClaims{"sub": "x"}))
	gt.NoError(t, err).Required()
	gt.Nil(t, claims.ExpiresAt)
	gt.False(t, claims.Expired(time.Now()))
}

func TestParse_Malformed(t *testing.T) {
	_, err := token.Parse("not-a-jwt")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, auth.ErrMalformedToken))
}
