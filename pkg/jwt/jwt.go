package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Config holds the signing material. It is read once at startup and never
// mutated afterwards.
type Config struct {
	Secret []byte
	Issuer string
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec signs and verifies HS256 tokens.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *gojwt.Parser
}

// NewCodec creates a codec over a private copy of cfg.Secret.
func NewCodec(cfg *Config, opts ...Option) (*Codec, error) {
	if cfg == nil || len(cfg.Secret) == 0 {
		return nil, ErrInvalidKey
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	c := &Codec{
		secret: secret,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = gojwt.NewParser(
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithStrictDecoding(),
		gojwt.WithTimeFunc(c.now),
	)

	return c, nil
}

// Issuer returns the configured issuer.
func (c *Codec) Issuer() string {
	return c.issuer
}

// Now returns the current time according to the codec's clock.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Encode signs claims. Identical claims under the same key always produce the
// same token.
func (c *Codec) Encode(claims ClaimSet) (string, error) {
	if claims.Subject == "" {
		return "", wrapf(ErrInvalidClaims, "subject is required")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return "", wrapf(ErrInvalidClaims, "expiry must be after issued-at")
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims.toWire())
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", wrap(ErrInvalidClaims, err)
	}
	return signed, nil
}

// Decode verifies the token's signature and expiry and returns its claims.
func (c *Codec) Decode(tokenString string) (*ClaimSet, error) {
	wire := &wireClaims{}
	token, err := c.parser.ParseWithClaims(tokenString, wire, c.keyFunc)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, wrapf(ErrMalformed, "token not valid")
	}

	return fromWire(wire)
}

func (c *Codec) keyFunc(t *gojwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
		return nil, wrapf(ErrBadSignature, "unexpected signing method %v", t.Header["alg"])
	}
	return c.secret, nil
}
