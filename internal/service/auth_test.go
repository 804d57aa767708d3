package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// Mocks
// ============================================================================

type mockUserRepo struct {
	emailIndex map[string]*model.User
	createErr  error
	getErr     error
	touchErr   error
	touched    []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{emailIndex: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "user:" + user.Email
	user.CreatedOn = time.Now()
	user.UpdatedOn = user.CreatedOn
	m.emailIndex[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.emailIndex[email], nil
}

func (m *mockUserRepo) TouchLogin(ctx context.Context, userID string) error {
	if m.touchErr != nil {
		return m.touchErr
	}
	m.touched = append(m.touched, userID)
	return nil
}

type mockDenylist struct {
	mu        sync.Mutex
	revoked   map[string]time.Duration
	revokeErr error
	lookupErr error
}

func newMockDenylist() *mockDenylist {
	return &mockDenylist{revoked: make(map[string]time.Duration)}
}

func (m *mockDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked[tokenID] = ttl
	return nil
}

func (m *mockDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (r *countingRecorder) inc(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
}

func (r *countingRecorder) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func (r *countingRecorder) LoginAttempt(result string)  { r.inc("login:" + result) }
func (r *countingRecorder) TokenIssued(reason string)   { r.inc("issued:" + reason) }
func (r *countingRecorder) TokenVerified(result string) { r.inc("verified:" + result) }
func (r *countingRecorder) Logout()                     { r.inc("logout") }

// ============================================================================
// Test Setup
// ============================================================================

type authFixture struct {
	svc      *AuthService
	repo     *mockUserRepo
	denylist *mockDenylist
	recorder *countingRecorder
	clock    *manualClock
}

func seedUser(t *testing.T, repo *mockUserRepo, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	h := string(hash)
	user := &model.User{ID: "user:1", Name: "Test User", Email: email, Hash: &h}
	repo.emailIndex[email] = user
	return user
}

func newAuthFixture(t *testing.T, withDenylist bool) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:     newMockUserRepo(),
		recorder: newCountingRecorder(),
		clock:    newManualClock(),
	}
	seedUser(t, f.repo, "test@example.com", "password123")

	cfg := AuthServiceConfig{
		Directory:    NewDirectory(DirectoryConfig{Users: f.repo, BcryptCost: bcrypt.MinCost}),
		TokenService: newTestTokenService(t, f.clock),
		Recorder:     f.recorder,
		DecoyCost:    bcrypt.MinCost,
	}
	if withDenylist {
		f.denylist = newMockDenylist()
		cfg.Denylist = f.denylist
	}
	svc, err := NewAuthService(cfg)
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	f.svc = svc
	return f
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_ValidCredentials_ReturnsTokenPair(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)

	result, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if result.TokenPair.TokenType != "Bearer" || result.TokenPair.ExpiresIn != 604800 {
		t.Errorf("unexpected pair %+v", result.TokenPair)
	}
	if result.User.Email != "test@example.com" {
		t.Errorf("expected user email, got %q", result.User.Email)
	}

	claims, err := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)
	if err != nil {
		t.Fatalf("issued token should authenticate: %v", err)
	}
	if claims.User.ID != "user:1" {
		t.Errorf("expected user:1, got %q", claims.User.ID)
	}

	if f.recorder.get("login:success") != 1 || f.recorder.get("issued:login") != 1 {
		t.Errorf("unexpected metrics %v", f.recorder.counts)
	}
}

func TestLogin_NormalizesEmail(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)

	_, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "  Test@Example.COM ",
		Password: "password123",
	})
	if err != nil {
		t.Errorf("expected case-insensitive email match, got %v", err)
	}
}

func TestLogin_RecordsLoginTime(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)

	result, err := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if len(f.repo.touched) != 1 || f.repo.touched[0] != "user:1" {
		t.Errorf("expected login stamp for user:1, got %v", f.repo.touched)
	}
	if result.User.LoginOn == nil {
		t.Error("expected LoginOn to be set")
	}
}

func TestLogin_TouchFailure_DoesNotBlockLogin(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)
	f.repo.touchErr = errors.New("write failed")

	if _, err := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"}); err != nil {
		t.Errorf("expected login to succeed, got %v", err)
	}
}

func TestLogin_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "wrongpassword"})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.recorder.get("login:invalid_credentials") != 1 {
		t.Errorf("expected failed attempt to be recorded, got %v", f.recorder.counts)
	}
}

func TestLogin_UnknownEmail_ReturnsSameError(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nonexistent@example.com", Password: "wrongpassword"})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// spyDirectory records which accounts had a password compared against them.
type spyDirectory struct {
	UserDirectory
	compared []*model.User
}

func (s *spyDirectory) VerifyPassword(user *model.User, plaintext string) bool {
	s.compared = append(s.compared, user)
	return s.UserDirectory.VerifyPassword(user, plaintext)
}

func TestLogin_UnknownEmail_ComparesAgainstDecoy(t *testing.T) {
	t.Parallel()
	repo := newMockUserRepo()
	dir := &spyDirectory{UserDirectory: NewDirectory(DirectoryConfig{Users: repo, BcryptCost: bcrypt.MinCost})}
	svc, err := NewAuthService(AuthServiceConfig{
		Directory:    dir,
		TokenService: newTestTokenService(t, newManualClock()),
		DecoyCost:    bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nonexistent@example.com", Password: "decoy-password-never-matches"})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(dir.compared) != 1 || dir.compared[0] == nil || !dir.compared[0].HasPassword() {
		t.Fatalf("expected one compare against a hashed decoy, got %v", dir.compared)
	}
	if dir.compared[0] != svc.decoy {
		t.Error("expected the decoy built at construction to be reused")
	}
}

func TestNewAuthService_InvalidDecoyCost_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := NewAuthService(AuthServiceConfig{
		Directory:    NewDirectory(DirectoryConfig{Users: newMockUserRepo()}),
		TokenService: newTestTokenService(t, newManualClock()),
		DecoyCost:    bcrypt.MaxCost + 1,
	})

	if err == nil {
		t.Error("expected error for an out-of-range bcrypt cost")
	}
}

func TestNewAuthService_DefaultDecoyCost(t *testing.T) {
	if testing.Short() {
		t.Skip("production bcrypt cost is slow")
	}
	t.Parallel()

	svc, err := NewAuthService(AuthServiceConfig{
		Directory:    NewDirectory(DirectoryConfig{Users: newMockUserRepo()}),
		TokenService: newTestTokenService(t, newManualClock()),
	})
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(*svc.decoy.Hash))
	if err != nil {
		t.Fatalf("decoy hash unreadable: %v", err)
	}
	if cost != bcryptCost {
		t.Errorf("expected decoy cost %d, got %d", bcryptCost, cost)
	}
}

func TestLogin_AccountWithoutPassword_ReturnsInvalidCredentials(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)
	f.repo.emailIndex["nohash@example.com"] = &model.User{ID: "user:2", Email: "nohash@example.com"}

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nohash@example.com", Password: "anything"})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_DirectoryError_Propagates(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)
	dbErr := errors.New("connection refused")
	f.repo.getErr = dbErr

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})

	if !errors.Is(err, dbErr) {
		t.Errorf("expected directory error, got %v", err)
	}
	if f.recorder.get("login:error") != 1 {
		t.Errorf("expected error attempt to be recorded, got %v", f.recorder.counts)
	}
}

func TestDecoyUser_NeverMatches(t *testing.T) {
	t.Parallel()
	d := NewDirectory(DirectoryConfig{Users: newMockUserRepo()})

	decoy, err := newDecoyUser(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("newDecoyUser failed: %v", err)
	}
	if d.VerifyPassword(decoy, "") {
		t.Error("decoy must not match an empty password")
	}
}

// ============================================================================
// Authenticate Tests
// ============================================================================

func TestAuthenticate_RecordsFailureKind(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)

	_, err := f.svc.Authenticate(context.Background(), "invalid.token.string")

	if !errors.Is(err, jwt.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
	if f.recorder.get("verified:malformed") != 1 {
		t.Errorf("expected malformed verification recorded, got %v", f.recorder.counts)
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)
	result, _ := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})

	f.clock.Advance(Validity)

	_, err := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)
	if !errors.Is(err, jwt.ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
	if f.recorder.get("verified:expired") != 1 {
		t.Errorf("expected expired verification recorded, got %v", f.recorder.counts)
	}
}

// ============================================================================
// Refresh Tests
// ============================================================================

func TestAuthRefresh_ReturnsNewPair(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)
	result, _ := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})

	f.clock.Advance(time.Minute)

	pair, err := f.svc.Refresh(context.Background(), result.TokenPair.AccessToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.AccessToken == result.TokenPair.AccessToken {
		t.Error("expected a different token")
	}
	if f.recorder.get("issued:refresh") != 1 {
		t.Errorf("expected refresh issuance recorded, got %v", f.recorder.counts)
	}
}

func TestAuthRefresh_RevokedToken_ReturnsErrTokenRevoked(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, true)
	result, _ := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})

	claims, _ := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)
	if err := f.svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	_, err := f.svc.Refresh(context.Background(), result.TokenPair.AccessToken)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
}

// ============================================================================
// Logout Tests
// ============================================================================

func TestLogout_WithoutDenylist_IsNoop(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, false)
	result, _ := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})
	claims, _ := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)

	if err := f.svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if f.svc.RevocationEnabled() {
		t.Error("expected revocation to be disabled")
	}
	if _, err := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken); err != nil {
		t.Errorf("token should stay valid without a denylist, got %v", err)
	}
	if f.recorder.get("logout") != 1 {
		t.Errorf("expected logout recorded, got %v", f.recorder.counts)
	}
}

func TestLogout_WithDenylist_RevokesForRemainingLifetime(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, true)
	result, _ := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})
	claims, _ := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)

	f.clock.Advance(time.Hour)
	if err := f.svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if ttl := f.denylist.revoked[claims.ID]; ttl != Validity-time.Hour {
		t.Errorf("expected ttl %v, got %v", Validity-time.Hour, ttl)
	}

	_, err := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
	if f.recorder.get("verified:revoked") != 1 {
		t.Errorf("expected revoked verification recorded, got %v", f.recorder.counts)
	}
}

func TestLogout_DenylistDown_ReturnsUnavailable(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, true)
	f.denylist.revokeErr = errors.New("redis down")

	err := f.svc.Logout(context.Background(), &jwt.ClaimSet{
		ID:        "jti-1",
		ExpiresAt: f.clock.now.Add(time.Hour),
	})

	if !errors.Is(err, ErrDenylistUnavailable) {
		t.Errorf("expected ErrDenylistUnavailable, got %v", err)
	}
}

func TestAuthenticate_DenylistDown_FailsClosed(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t, true)
	result, _ := f.svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "password123"})
	f.denylist.lookupErr = errors.New("redis down")

	_, err := f.svc.Authenticate(context.Background(), result.TokenPair.AccessToken)

	if !errors.Is(err, ErrDenylistUnavailable) {
		t.Errorf("expected ErrDenylistUnavailable, got %v", err)
	}
	if f.recorder.get("verified:error") != 1 {
		t.Errorf("expected error verification recorded, got %v", f.recorder.counts)
	}
}
