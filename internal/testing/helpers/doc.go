// Package helpers provides test utilities shared by the handler and
// end-to-end style tests.
//
// # Token Helpers
//
// Mint tokens against a controllable clock:
//
//	th := helpers.NewTokenHelper(t)
//	token := th.GenerateToken(t, user)
//	expired := th.GenerateExpiredToken(t, user)
//	forged := th.GenerateForgedToken(t, user)
//	th.Clock.Advance(time.Hour)
//
// # Request Helpers
//
//	req := helpers.NewRequest(t, http.MethodPost, "/auth/login").
//	    WithBody(map[string]string{"email": "test@example.com"}).
//	    Build()
//
// # Assertion Helpers
//
//	helpers.AssertStatus(t, rec, http.StatusOK)
//	helpers.AssertError(t, rec, http.StatusUnauthorized, "Invalid token")
package helpers
