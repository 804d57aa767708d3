package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wxyClark/LaravelX-AI/internal/middleware"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/internal/service"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

// AuthService is the subset of service.AuthService the handlers call
type AuthService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error)
	Refresh(ctx context.Context, token string) (*service.TokenPair, error)
	Logout(ctx context.Context, claims *jwt.ClaimSet) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService AuthService
	validate    *validator.Validate
}

// AuthHandlerConfig holds dependencies for the auth handler
type AuthHandlerConfig struct {
	AuthService AuthService
	Validate    *validator.Validate // Optional: NewValidator() when nil
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	if cfg.Validate == nil {
		cfg.Validate = NewValidator()
	}
	return &AuthHandler{
		authService: cfg.AuthService,
		validate:    cfg.Validate,
	}
}

// NewValidator returns a validator that reports fields by their json names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// UserResponse represents a user in the login response
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedOn string `json:"created_on,omitempty"`
	UpdatedOn string `json:"updated_on,omitempty"`
}

// LoginResponse is the body returned by a successful login
type LoginResponse struct {
	service.TokenPair
	User UserResponse `json:"user"`
}

// VerifyResponse is the body returned for a valid token
type VerifyResponse struct {
	Valid bool            `json:"valid"`
	User  jwt.UserSummary `json:"user"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, model.NewBadRequestError(model.MsgInvalidBody))
		return
	}

	fields, err := h.validateStruct(&req)
	if err != nil {
		WriteError(w, MapServiceError(r.Context(), err))
		return
	}
	if fields != nil {
		WriteError(w, model.NewValidationError(fields))
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(r.Context(), err))
		return
	}

	WriteJSON(w, http.StatusOK, LoginResponse{
		TokenPair: *result.TokenPair,
		User:      toUserResponse(result.User),
	})
}

// Verify handles GET /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		WriteError(w, model.NewUnauthorizedError(model.MsgTokenNotProvided))
		return
	}

	WriteJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: claims.User})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())
	if token == "" {
		WriteError(w, model.NewUnauthorizedError(model.MsgTokenNotProvided))
		return
	}

	pair, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		WriteError(w, MapServiceError(r.Context(), err))
		return
	}

	WriteJSON(w, http.StatusOK, pair)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		WriteError(w, model.NewUnauthorizedError(model.MsgTokenNotProvided))
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		WriteError(w, MapServiceError(r.Context(), err))
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// Me handles GET /user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		WriteError(w, model.NewUnauthorizedError(model.MsgTokenNotProvided))
		return
	}

	WriteJSON(w, http.StatusOK, claims.User)
}

// validateStruct returns per-field messages, or an error when v cannot be
// validated at all.
func (h *AuthHandler) validateStruct(v interface{}) (map[string]string, error) {
	err := h.validate.Struct(v)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

func toUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
	if !user.CreatedOn.IsZero() {
		resp.CreatedOn = user.CreatedOn.Format(time.RFC3339)
	}
	if !user.UpdatedOn.IsZero() {
		resp.UpdatedOn = user.UpdatedOn.Format(time.RFC3339)
	}
	return resp
}
