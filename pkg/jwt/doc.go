// Package jwt encodes and decodes the HS256 bearer tokens issued by the SSO
// service.
//
// A token is a compact JWS whose payload carries the registered claims
// (iss, sub, iat, exp, jti) plus a snapshot of the user it was issued to:
//
//	{
//	  "iss": "https://sso.example.com",
//	  "sub": "user:42",
//	  "iat": 1700000000,
//	  "exp": 1700604800,
//	  "jti": "5f0d...",
//	  "user": {"id": "user:42", "name": "Test User", "email": "test@example.com"}
//	}
//
// # Encoding
//
//	codec, err := jwt.NewCodec(&jwt.Config{Secret: secret, Issuer: issuer})
//	token, err := codec.Encode(claims)
//
// # Decoding
//
// Decode verifies the signature before it trusts the expiry, and reports
// failures with one of three sentinels:
//
//	claims, err := codec.Decode(token)
//	switch {
//	case errors.Is(err, jwt.ErrExpired):
//	case errors.Is(err, jwt.ErrBadSignature):
//	case errors.Is(err, jwt.ErrMalformed):
//	}
//
// The Codec holds no mutable state and may be shared between goroutines.
package jwt
