package jwt

import (
	"errors"
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed     = errors.New("malformed token")
	ErrBadSignature  = errors.New("invalid token signature")
	ErrExpired       = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
	ErrInvalidKey    = errors.New("invalid key")
)

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindMalformed
	KindBadSignature
	KindExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindBadSignature:
		return "bad_signature"
	case KindExpired:
		return "expired"
	default:
		return "none"
	}
}

// KindOf reports which decode failure err carries. Errors that did not come
// from Decode yield KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrExpired):
		return KindExpired
	case errors.Is(err, ErrBadSignature):
		return KindBadSignature
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	default:
		return KindNone
	}
}

// classify maps a golang-jwt parse error onto our sentinels. The expiry check
// must come first because the library joins it with ErrTokenInvalidClaims.
func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return wrap(ErrExpired, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid),
		errors.Is(err, gojwt.ErrTokenUnverifiable):
		return wrap(ErrBadSignature, err)
	default:
		return wrap(ErrMalformed, err)
	}
}

func wrap(kind, cause error) error {
	return fmt.Errorf("%w: %v", kind, cause)
}

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
}
