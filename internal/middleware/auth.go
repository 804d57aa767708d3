package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

// Authenticator verifies a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.ClaimSet, error)
}

const (
	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"

	// TokenKey is the context key for the raw bearer token
	TokenKey contextKey = "token"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively; ok is false when the
// header is absent, uses another scheme, or carries an empty token.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Auth returns a middleware that rejects requests without a valid bearer
// token. Every verification failure produces the same response body.
func Auth(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				annotate(r.Context(), func(rl *requestLog) { rl.authFailure = "missing" })
				model.NewUnauthorizedError(model.MsgTokenNotProvided).WriteJSON(w)
				return
			}

			claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				annotate(r.Context(), func(rl *requestLog) { rl.authFailure = failureReason(err) })
				model.NewUnauthorizedError(model.MsgInvalidToken).WriteJSON(w)
				return
			}
			annotate(r.Context(), func(rl *requestLog) { rl.userID = claims.Subject })

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, TokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// failureReason names a rejected token for the access log: the decode
// failure kind, or "rejected" for revocation and backend errors.
func failureReason(err error) string {
	if kind := jwt.KindOf(err); kind != jwt.KindNone {
		return kind.String()
	}
	return "rejected"
}

// GetClaims extracts the verified claims from context
func GetClaims(ctx context.Context) *jwt.ClaimSet {
	if claims, ok := ctx.Value(ClaimsKey).(*jwt.ClaimSet); ok {
		return claims
	}
	return nil
}

// GetToken extracts the raw bearer token from context
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

// GetUserID returns the token subject from context
func GetUserID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
