package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// UserSummary is the identity snapshot embedded in every token.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ClaimSet is the decoded content of a token.
type ClaimSet struct {
	Issuer    string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
	User      UserSummary
}

// Expired reports whether the claims are no longer valid at now.
func (c *ClaimSet) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Remaining returns how long the claims stay valid after now, never negative.
func (c *ClaimSet) Remaining(now time.Time) time.Duration {
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// wireClaims is the JSON payload layout.
type wireClaims struct {
	gojwt.RegisteredClaims
	User *UserSummary `json:"user,omitempty"`
}

func (c *ClaimSet) toWire() *wireClaims {
	user := c.User
	return &wireClaims{
		User: &user,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   c.Subject,
			IssuedAt:  gojwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: gojwt.NewNumericDate(c.ExpiresAt),
			ID:        c.ID,
		},
	}
}

// fromWire converts a signature-checked payload, rejecting payloads that lack
// a required field.
func fromWire(w *wireClaims) (*ClaimSet, error) {
	switch {
	case w.Subject == "":
		return nil, wrapf(ErrMalformed, "missing sub")
	case w.IssuedAt == nil:
		return nil, wrapf(ErrMalformed, "missing iat")
	case w.ExpiresAt == nil:
		return nil, wrapf(ErrMalformed, "missing exp")
	case w.User == nil || w.User.ID == "":
		return nil, wrapf(ErrMalformed, "missing user.id")
	}

	return &ClaimSet{
		Issuer:    w.Issuer,
		Subject:   w.Subject,
		IssuedAt:  w.IssuedAt.Time,
		ExpiresAt: w.ExpiresAt.Time,
		ID:        w.ID,
		User:      *w.User,
	}, nil
}
