package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

// Validity is the fixed lifetime of every issued token.
const Validity = 7 * 24 * time.Hour

// TokenType is the scheme clients present tokens under
const TokenType = "Bearer"

// TokenService issues, verifies and refreshes bearer tokens.
// It performs no I/O and is safe for concurrent use.
type TokenService struct {
	codec  *jwt.Codec
	issuer string
	newID  func() string
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	Codec  *jwt.Codec
	Issuer string // Default: the codec's issuer
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	if cfg.Issuer == "" {
		cfg.Issuer = cfg.Codec.Issuer()
	}

	return &TokenService{
		codec:  cfg.Codec,
		issuer: cfg.Issuer,
		newID:  uuid.NewString,
	}
}

// TokenPair is the payload returned to clients after login or refresh
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// ExpiresIn returns the token lifetime in seconds
func (s *TokenService) ExpiresIn() int {
	return int(Validity / time.Second)
}

// Issue mints a token for user, valid from now for Validity.
func (s *TokenService) Issue(user *model.User) (string, error) {
	now := s.now()

	return s.codec.Encode(jwt.ClaimSet{
		Issuer:    s.issuer,
		Subject:   user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(Validity),
		ID:        s.newID(),
		User: jwt.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	})
}

// Verify checks the token's signature and expiry and returns its claims.
func (s *TokenService) Verify(token string) (*jwt.ClaimSet, error) {
	return s.codec.Decode(token)
}

// Refresh exchanges a still-valid token for a new one carrying the same
// identity with fresh timestamps. Expired tokens cannot be refreshed.
//
// Timestamps have one-second resolution, so a refresh within the same
// second as the original issue yields an equal expiry; it is strictly
// later once the clock has moved past that second.
func (s *TokenService) Refresh(token string) (string, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return "", err
	}
	return s.reissue(claims)
}

// Pair wraps a token in the client-facing response shape
func (s *TokenService) Pair(token string) *TokenPair {
	return &TokenPair{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresIn:   s.ExpiresIn(),
	}
}

func (s *TokenService) reissue(claims *jwt.ClaimSet) (string, error) {
	now := s.now()

	return s.codec.Encode(jwt.ClaimSet{
		Issuer:    claims.Issuer,
		Subject:   claims.Subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(Validity),
		ID:        s.newID(),
		User:      claims.User,
	})
}

// now truncates to the wire precision so issued claims compare equal to
// decoded ones.
func (s *TokenService) now() time.Time {
	return s.codec.Now().Truncate(time.Second)
}
