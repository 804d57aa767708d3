package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/internal/service"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

// TestSecret signs every token minted by TokenHelper
var TestSecret = []byte("test-secret-key-that-is-32-bytes!")

// TestIssuer is the issuer claim on minted tokens
const TestIssuer = "http://localhost"

// ============================================================================
// Clock
// ============================================================================

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed whole second
func NewClock() *Clock {
	return &Clock{now: time.Unix(1_700_000_000, 0)}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ============================================================================
// Token Helpers
// ============================================================================

// TokenHelper mints tokens with the test secret on a fake clock
type TokenHelper struct {
	Clock  *Clock
	Codec  *jwt.Codec
	Tokens *service.TokenService
}

// NewTokenHelper creates a token helper
func NewTokenHelper(t *testing.T) *TokenHelper {
	t.Helper()

	clock := NewClock()
	codec, err := jwt.NewCodec(&jwt.Config{Secret: TestSecret, Issuer: TestIssuer}, jwt.WithClock(clock.Now))
	require.NoError(t, err, "helpers: failed to create codec")

	return &TokenHelper{
		Clock:  clock,
		Codec:  codec,
		Tokens: service.NewTokenService(service.TokenServiceConfig{Codec: codec}),
	}
}

// GenerateToken creates a valid token for user
func (h *TokenHelper) GenerateToken(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := h.Tokens.Issue(user)
	require.NoError(t, err, "helpers: failed to issue token")
	return token
}

// GenerateExpiredToken creates a correctly signed token whose expiry has
// already passed on the helper's clock
func (h *TokenHelper) GenerateExpiredToken(t *testing.T, user *model.User) string {
	t.Helper()
	now := h.Clock.Now()
	token, err := h.Codec.Encode(jwt.ClaimSet{
		Issuer:    TestIssuer,
		Subject:   user.ID,
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
		User:      summary(user),
	})
	require.NoError(t, err, "helpers: failed to encode expired token")
	return token
}

// GenerateForgedToken creates a token signed with a different secret
func (h *TokenHelper) GenerateForgedToken(t *testing.T, user *model.User) string {
	t.Helper()
	forger, err := jwt.NewCodec(&jwt.Config{Secret: []byte("not-the-real-secret-not-the-real"), Issuer: TestIssuer}, jwt.WithClock(h.Clock.Now))
	require.NoError(t, err, "helpers: failed to create forging codec")

	now := h.Clock.Now()
	token, err := forger.Encode(jwt.ClaimSet{
		Issuer:    TestIssuer,
		Subject:   user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(service.Validity),
		User:      summary(user),
	})
	require.NoError(t, err, "helpers: failed to encode forged token")
	return token
}

func summary(user *model.User) jwt.UserSummary {
	return jwt.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	raw     []byte
	headers map[string]string
}

// NewRequest creates a new request builder
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: make(map[string]string),
	}
}

// WithBody sets the request body (will be JSON encoded)
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

// WithRawBody sets the request body verbatim
func (rb *RequestBuilder) WithRawBody(raw string) *RequestBuilder {
	rb.raw = []byte(raw)
	return rb
}

// WithHeader adds a header to the request
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithBearer sets an "Authorization: Bearer" header
func (rb *RequestBuilder) WithBearer(token string) *RequestBuilder {
	return rb.WithHeader("Authorization", "Bearer "+token)
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	switch {
	case rb.raw != nil:
		bodyReader = bytes.NewReader(rb.raw)
	case rb.body != nil:
		bodyBytes, err := json.Marshal(rb.body)
		require.NoError(rb.t, err, "helpers: failed to marshal body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	return req
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.Code, "unexpected status, body: %s", resp.Body.String())
}

// AssertError checks status and the {"error": ...} body
func AssertError(t *testing.T, resp *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatus(t, resp, status)

	var body model.APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), "error body is not JSON: %s", resp.Body.String())
	assert.Equal(t, message, body.Message)
}

// DecodeBody unmarshals the response body into v
func DecodeBody(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), "failed to decode body: %s", resp.Body.String())
}
