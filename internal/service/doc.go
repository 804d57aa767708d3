// Package service implements token issuance and the login flow.
//
// TokenService is pure: it signs, verifies and refreshes tokens through a
// jwt.Codec and performs no I/O. AuthService layers the account lookup,
// the optional revocation denylist and outcome metrics on top of it.
//
// # Error Handling
//
// Credential failures return ErrInvalidCredentials regardless of whether the
// account exists. Token failures keep the jwt package sentinels
// (jwt.ErrMalformed, jwt.ErrBadSignature, jwt.ErrExpired) so callers can
// tell them apart with errors.Is:
//
//	claims, err := auth.Authenticate(ctx, token)
//	if errors.Is(err, jwt.ErrExpired) {
//	    // prompt for a fresh login
//	}
package service
