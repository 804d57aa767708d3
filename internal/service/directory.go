package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wxyClark/LaravelX-AI/internal/database"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	// Password constraints
	minPasswordLength = 8
	maxPasswordLength = 128
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLogin(ctx context.Context, userID string) error
}

// Directory is the bcrypt-backed UserDirectory over a UserRepository
type Directory struct {
	users UserRepository
	cost  int
}

// DirectoryConfig holds configuration for the directory
type DirectoryConfig struct {
	Users      UserRepository
	BcryptCost int // Default: 12
}

// NewDirectory creates a new directory
func NewDirectory(cfg DirectoryConfig) *Directory {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcryptCost
	}
	return &Directory{
		users: cfg.Users,
		cost:  cfg.BcryptCost,
	}
}

// FindByEmail returns the account registered under email, or nil
func (d *Directory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return d.users.GetByEmail(ctx, normalizeEmail(email))
}

// VerifyPassword compares plaintext against the user's stored hash
func (d *Directory) VerifyPassword(user *model.User, plaintext string) bool {
	if user == nil || !user.HasPassword() {
		return false
	}
	return checkPassword(plaintext, *user.Hash)
}

// RecordLogin stamps the account's last login time. Failures are logged and
// never block the login.
func (d *Directory) RecordLogin(ctx context.Context, user *model.User) {
	if err := d.users.TouchLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to record login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	now := time.Now().UTC()
	user.LoginOn = &now
}

// CreateUser adds an account with a freshly hashed password
func (d *Directory) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := d.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password, d.cost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: email,
		Hash:  &hash,
	}
	if err := d.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// EnsureUser creates the account unless one already exists for the email
func (d *Directory) EnsureUser(ctx context.Context, req model.CreateUserRequest) (*model.User, bool, error) {
	existing, err := d.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	user, err := d.CreateUser(ctx, req)
	if errors.Is(err, ErrEmailAlreadyExists) {
		// Lost a race with a concurrent create
		existing, err = d.FindByEmail(ctx, req.Email)
		if err == nil && existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Helper functions

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	// Basic email validation
	if email == "" {
		return false
	}
	if len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}
