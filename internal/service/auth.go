package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// UserDirectory looks up accounts and checks their passwords.
type UserDirectory interface {
	// FindByEmail returns (nil, nil) when no account has the address.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	VerifyPassword(user *model.User, plaintext string) bool
}

// loginTracker is implemented by directories that keep a last-login stamp.
type loginTracker interface {
	RecordLogin(ctx context.Context, user *model.User)
}

// Denylist records revoked token IDs until the tokens would have expired
// anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Recorder receives authentication outcomes for metrics.
type Recorder interface {
	LoginAttempt(result string)
	TokenIssued(reason string)
	TokenVerified(result string)
	Logout()
}

// Outcome labels passed to Recorder
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
	ResultValid              = "valid"
	ResultRevoked            = "revoked"

	ReasonLogin   = "login"
	ReasonRefresh = "refresh"
)

// AuthService handles authentication operations
type AuthService struct {
	directory UserDirectory
	tokens    *TokenService
	denylist  Denylist
	recorder  Recorder
	decoy     *model.User
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	Directory    UserDirectory
	TokenService *TokenService
	Denylist     Denylist // Optional: nil disables revocation
	Recorder     Recorder // Optional
	DecoyCost    int      // bcrypt cost of the unknown-email decoy; 0 means bcryptCost
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) (*AuthService, error) {
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.DecoyCost == 0 {
		cfg.DecoyCost = bcryptCost
	}

	decoy, err := newDecoyUser(cfg.DecoyCost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		directory: cfg.Directory,
		tokens:    cfg.TokenService,
		denylist:  cfg.Denylist,
		recorder:  cfg.Recorder,
		decoy:     decoy,
	}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResult represents a successful login
type LoginResult struct {
	User      *model.User
	TokenPair *TokenPair
}

// RevocationEnabled reports whether logout invalidates tokens server-side
func (s *AuthService) RevocationEnabled() bool {
	return s.denylist != nil
}

// Login authenticates a user with email/password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		s.recorder.LoginAttempt(ResultError)
		return nil, err
	}

	// Unknown accounts still pay for one bcrypt comparison.
	if user == nil || !user.HasPassword() {
		s.directory.VerifyPassword(s.decoy, req.Password)
		s.recorder.LoginAttempt(ResultInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if !s.directory.VerifyPassword(user, req.Password) {
		s.recorder.LoginAttempt(ResultInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.recorder.LoginAttempt(ResultError)
		return nil, err
	}

	if tracker, ok := s.directory.(loginTracker); ok {
		tracker.RecordLogin(ctx, user)
	}

	s.recorder.LoginAttempt(ResultSuccess)
	s.recorder.TokenIssued(ReasonLogin)

	return &LoginResult{
		User:      user,
		TokenPair: s.tokens.Pair(token),
	}, nil
}

// Authenticate verifies a bearer token and, when revocation is enabled,
// rejects tokens that were logged out.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwt.ClaimSet, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		kind := jwt.KindOf(err)
		slog.Debug("token rejected", slog.String("kind", kind.String()))
		s.recorder.TokenVerified(kind.String())
		return nil, err
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		if errors.Is(err, ErrTokenRevoked) {
			s.recorder.TokenVerified(ResultRevoked)
		} else {
			s.recorder.TokenVerified(ResultError)
		}
		return nil, err
	}

	s.recorder.TokenVerified(ResultValid)
	return claims, nil
}

// Refresh exchanges a valid, unrevoked token for a new one
func (s *AuthService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}

	refreshed, err := s.tokens.Refresh(token)
	if err != nil {
		return nil, err
	}

	s.recorder.TokenIssued(ReasonRefresh)
	return s.tokens.Pair(refreshed), nil
}

// Logout revokes the presented token when revocation is enabled. Without a
// denylist it succeeds without any server-side change.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.ClaimSet) error {
	s.recorder.Logout()

	if s.denylist == nil || claims.ID == "" {
		return nil
	}

	ttl := claims.Remaining(s.tokens.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		slog.Error("failed to revoke token",
			slog.String("jti", claims.ID),
			slog.String("error", err.Error()),
		)
		return errors.Join(ErrDenylistUnavailable, err)
	}
	return nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *jwt.ClaimSet) error {
	if s.denylist == nil || claims.ID == "" {
		return nil
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		slog.Error("revocation lookup failed",
			slog.String("jti", claims.ID),
			slog.String("error", err.Error()),
		)
		return errors.Join(ErrDenylistUnavailable, err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// newDecoyUser returns an account whose bcrypt hash no password is expected
// to match. Unknown emails are compared against it.
func newDecoyUser(cost int) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("decoy-password-never-matches"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate decoy hash: %w", err)
	}
	h := string(hash)
	return &model.User{ID: "decoy", Hash: &h}, nil
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(string)  {}
func (nopRecorder) TokenIssued(string)   {}
func (nopRecorder) TokenVerified(string) {}
func (nopRecorder) Logout()              {}
