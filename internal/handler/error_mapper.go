package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wxyClark/LaravelX-AI/internal/middleware"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/internal/service"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

// MapServiceError converts a service error to an API error. Token failures
// of every kind collapse to the same body; anything unrecognised is logged
// and reported as a 500.
func MapServiceError(ctx context.Context, err error) *model.APIError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(model.MsgInvalidCredentials)

	case jwt.KindOf(err) != jwt.KindNone,
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrDenylistUnavailable):
		return model.NewUnauthorizedError(model.MsgInvalidToken)
	}

	slog.Error("unhandled service error",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(ctx)),
	)
	return model.NewInternalError()
}
