package model

import "time"

// User represents a directory account
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Hash      *string    `json:"-"` // Never expose password hash
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn time.Time  `json:"updated_on"`
	LoginOn   *time.Time `json:"login_on,omitempty"`
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.Hash != nil && *u.Hash != ""
}

// CreateUserRequest holds the fields needed to add an account
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}
