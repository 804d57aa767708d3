// Package handler provides the HTTP surface of the auth gateway.
//
// # Routes
//
//	POST /auth/login     credentials in, bearer token out
//	GET  /auth/verify    token snapshot of the caller
//	POST /auth/refresh   new token for a still-valid one
//	POST /auth/logout    acknowledge, and revoke when a denylist is configured
//	GET  /user           current user from the token
//	GET  /health         liveness
//	GET  /metrics        Prometheus exposition
//
// # Response Format
//
// Success bodies are plain JSON objects. Failures use model.APIError:
//
//	{"error": "Invalid credentials"}
//	{"error": "Validation failed", "fields": {"email": "The email field is required."}}
//
// Every token failure (malformed, bad signature, expired, revoked) yields the
// same 401 body; MapServiceError owns that mapping.
package handler
