package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwtdemo/auth-system/internal/core/domain"
	"github.com/jwtdemo/auth-system/internal/pkg/password"
	"github.com/jwtdemo/auth-system/internal/pkg/token"
)

type stubUserRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	findErr  error
	createFn func(email, hash string) (*domain.User, error)
	creates  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, email, hash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createFn != nil {
		return r.createFn(email, hash)
	}
	if _, exists := r.users[email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	u := &domain.User{ID: "id-" + email, Email: email, PasswordHash: hash}
	r.users[email] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Ping(context.Context) error { return nil }

func newSvc(t *testing.T, repo *stubUserRepo) (*AuthService, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec([]byte("secret"))
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return NewAuthService(repo, password.NewBcryptHasher(bcrypt.MinCost), codec, zerolog.Nop()), codec
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newSvc(t, repo)

	user, err := svc.Register(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" || user.ID == "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored := repo.users["alice@example.com"]
	if stored.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newSvc(t, repo)

	cases := []struct {
		email, password, msg string
	}{
		{"", "secret1", msgInvalidEmail},
		{"not-an-email", "secret1", msgInvalidEmail},
		{"bob@example.com", "12345", msgPasswordTooShort},
		{"bob@example.com", "", msgPasswordTooShort},
		{"bob@example.com", "ééé", msgPasswordTooShort},
		{"bob@example.com", strings.Repeat("a", 80), msgPasswordTooLong},
		{"bob@example.com", strings.Repeat("é", 37), msgPasswordTooLong},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.email, tc.password)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%q/%q: expected ErrValidation, got %v", tc.email, tc.password, err)
		}
		if err.Error() != tc.msg {
			t.Fatalf("%q/%q: expected message %q, got %q", tc.email, tc.password, tc.msg, err.Error())
		}
	}
	if repo.creates != 0 {
		t.Fatalf("invalid input must not reach the store")
	}
}

func TestAuthService_Register_MultibytePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newSvc(t, repo)

	// six characters, twelve bytes
	if _, err := svc.Register(context.Background(), "mb@example.com", "éééééé"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(context.Background(), "mb@example.com", "éééééé"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestAuthService_Register_HasherLengthErrorsAreValidation(t *testing.T) {
	for _, tc := range []struct {
		hashErr error
		msg     string
	}{
		{fmt.Errorf("%w: bcrypt limit", password.ErrTooLong), msgPasswordTooLong},
		{fmt.Errorf("%w: too few", password.ErrTooShort), msgPasswordTooShort},
	} {
		repo := newStubUserRepo()
		codec, err := token.NewCodec([]byte("secret"))
		if err != nil {
			t.Fatalf("codec: %v", err)
		}
		svc := NewAuthService(repo, &countingHasher{hashErr: tc.hashErr}, codec, zerolog.Nop())

		_, err = svc.Register(context.Background(), "len@example.com", "secret1")
		if !errors.Is(err, domain.ErrValidation) || err.Error() != tc.msg {
			t.Fatalf("expected validation error %q, got %v", tc.msg, err)
		}
		if repo.creates != 0 {
			t.Fatalf("rejected password must not reach the store")
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newSvc(t, repo)

	if _, err := svc.Register(context.Background(), "bob@example.com", "secret1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob@example.com", "secret2"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("duplicate must be rejected before hashing and insert, creates=%d", repo.creates)
	}
}

func TestAuthService_Register_LosesRace(t *testing.T) {
	repo := newStubUserRepo()
	repo.createFn = func(string, string) (*domain.User, error) {
		return nil, domain.ErrDuplicateEmail
	}
	svc, _ := newSvc(t, repo)

	if _, err := svc.Register(context.Background(), "race@example.com", "secret1"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := newSvc(t, repo)

	_, err := svc.Register(context.Background(), "carol@example.com", "secret1")
	if err == nil || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newSvc(t, repo)

	if _, err := svc.Register(context.Background(), "carol@example.com", "s3cret!"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "carol@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if res.User.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claims, err := codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != res.User.ID || claims.Email != "carol@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if d := claims.ExpiresAt.Sub(claims.IssuedAt); d != 24*time.Hour {
		t.Fatalf("expected 24h validity, got %v", d)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newSvc(t, repo)

	_, _ = svc.Register(context.Background(), "dave@example.com", "goodpass")

	_, wrongPass := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, noUser := svc.Login(context.Background(), "ghost@example.com", "goodpass")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) || !errors.Is(noUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPass, noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass.Error(), noUser.Error())
	}
}

type countingHasher struct {
	mu       sync.Mutex
	hashErr  error
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes++
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "digest:" + plaintext, nil
}

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verifies++
	return digest == "digest:"+plaintext
}

func TestAuthService_Login_UnknownEmailRunsOneComparison(t *testing.T) {
	repo := newStubUserRepo()
	codec, err := token.NewCodec([]byte("secret"))
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	hasher := &countingHasher{}
	svc := NewAuthService(repo, hasher, codec, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "erin@example.com", "goodpass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	hasher.verifies = 0

	if _, err := svc.Login(context.Background(), "erin@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.verifies != 1 {
		t.Fatalf("wrong password: expected 1 comparison, got %d", hasher.verifies)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(context.Background(), "ghost@example.com", "goodpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if hasher.verifies != 3 {
		t.Fatalf("unknown email: expected one comparison per attempt, got %d total", hasher.verifies)
	}
	// placeholder digest is prepared once
	if hasher.hashes != 2 {
		t.Fatalf("expected register hash plus one placeholder hash, got %d", hasher.hashes)
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _ := newSvc(t, newStubUserRepo())

	if _, err := svc.Login(context.Background(), "nope", "pass"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad email, got %v", err)
	}
	_, err := svc.Login(context.Background(), "a@example.com", "")
	if !errors.Is(err, domain.ErrValidation) || err.Error() != msgPasswordRequired {
		t.Fatalf("expected password required, got %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newSvc(t, repo)

	registered, err := svc.Register(context.Background(), "erin@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Profile(context.Background(), domain.Claims{UserID: registered.ID, Email: "erin@example.com"})
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got != registered {
		t.Fatalf("expected %+v, got %+v", registered, got)
	}

	delete(repo.users, "erin@example.com")
	if _, err := svc.Profile(context.Background(), domain.Claims{Email: "erin@example.com"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
