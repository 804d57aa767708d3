// Package middleware provides HTTP middleware for the auth gateway.
//
// # Available Middleware
//
//   - Auth: bearer token verification, 401 on any failure
//   - RateLimit: per-IP token buckets on the credential endpoints
//   - RequestID, Logger, Recovery, CORS: request plumbing
//
// # Authentication
//
// Auth accepts any Authenticator, normally *service.AuthService:
//
//	protected := middleware.Auth(authService)
//	r.With(protected).Post("/auth/logout", h.Logout)
//
// After authentication, handlers read the verified claims from context:
//
//	claims := middleware.GetClaims(r.Context())
//	userID := middleware.GetUserID(r.Context())
package middleware
