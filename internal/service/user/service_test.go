package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.User
	nextID  int64
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.User)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) PurgeExpired(_ context.Context, userID int64, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if t.UserID == userID && !t.ExpiresAt.After(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[u.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	r.nextID++
	clone := u
	clone.ID = r.nextID
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		clone := u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestSignupLoginLookupLogout(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens, time.Hour)
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Email: " Shopper@Example.com ", Password: " secret123 ", Name: "Kim"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Email != "shopper@example.com" || u.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PasswordHash == "secret123" {
		t.Fatalf("password stored in plain text")
	}

	got, token, err := svc.Login(ctx, "shopper@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID || token == "" {
		t.Fatalf("unexpected login result user=%+v token=%q", got, token)
	}

	who, err := svc.LookupByToken(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if who.ID != u.ID {
		t.Fatalf("lookup returned %d, want %d", who.ID, u.ID)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
}

func TestSignup_RejectsBadInput(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour)
	ctx := context.Background()

	cases := []SignupInput{
		{Email: "", Password: "secret123", Name: "A"},
		{Email: "a@example.com", Password: "secret123", Name: " "},
		{Email: "a@example.com", Password: "short1", Name: "A"},
		{Email: "a@example.com", Password: "nodigitshere", Name: "A"},
	}
	for _, in := range cases {
		if _, err := svc.Signup(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("signup %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour)
	ctx := context.Background()

	in := SignupInput{Email: "dup@example.com", Password: "secret123", Name: "A"}
	if _, err := svc.Signup(ctx, in); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "secret123", Name: "U"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "user@example.com", "wrongpass1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "missing@example.com", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestLookupByToken_Expired(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens, time.Minute)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "exp@example.com", Password: "secret123", Name: "E"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, token, err := svc.Login(ctx, "exp@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.LookupByToken(ctx, token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, ok := tokens.tokens[token]; ok {
		t.Fatalf("expired token should be deleted")
	}
}

func TestLogin_PurgesExpiredSessions(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens, time.Minute)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "purge@example.com", Password: "secret123", Name: "P"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, stale, err := svc.Login(ctx, "purge@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, fresh, err := svc.Login(ctx, "purge@example.com", "secret123")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, ok := tokens.tokens[stale]; ok {
		t.Fatalf("expired session should be purged at login")
	}
	if _, ok := tokens.tokens[fresh]; !ok {
		t.Fatalf("new session missing")
	}
}
