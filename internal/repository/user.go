package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wxyClark/LaravelX-AI/internal/database"
	"github.com/wxyClark/LaravelX-AI/internal/model"
)

// UserRepository handles directory accounts stored in SurrealDB
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			name: $name,
			email: $email,
			hash: IF $hash IS NOT NULL THEN $hash ELSE NONE END,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":  user.Name,
		"email": user.Email,
		"hash":  ptrToNone(user.Hash),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := firstRecord(result)
	if err != nil {
		return err
	}

	user.ID = convertSurrealID(created["id"])
	user.CreatedOn = parseTime(created["created_on"])
	user.UpdatedOn = parseTime(created["updated_on"])
	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	return r.getOne(ctx, query, vars)
}

// TouchLogin stamps the user's last successful login
func (r *UserRepository) TouchLogin(ctx context.Context, userID string) error {
	query := `UPDATE type::record($id) SET login_on = time::now()`
	vars := map[string]interface{}{"id": userID}

	return r.db.Execute(ctx, query, vars)
}

// getOne returns (nil, nil) when the query matched nothing
func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func parseUserResult(result interface{}) (*model.User, error) {
	data, err := unwrapRecord(result)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        convertSurrealID(data["id"]),
		Name:      stringField(data, "name"),
		Email:     stringField(data, "email"),
		CreatedOn: parseTime(data["created_on"]),
		UpdatedOn: parseTime(data["updated_on"]),
	}

	if h, ok := data["hash"].(string); ok {
		user.Hash = &h
	}
	if v, ok := data["login_on"]; ok && v != nil {
		if t := parseTime(v); !t.IsZero() {
			user.LoginOn = &t
		}
	}

	return user, nil
}
