package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	s := NewAuthService(newTestStore(t), "test-secret", time.Hour)
	if _, created, err := s.EnsureAdmin(context.Background(), "Admin@Example.com ", "s3cret-pass", "Betinha"); err != nil || !created {
		t.Fatalf("ensure admin: created=%v err=%v", created, err)
	}
	return s
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	s := newTestAuth(t)

	u, created, err := s.EnsureAdmin(context.Background(), "admin@example.com", "another-password", "")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if created {
		t.Fatalf("admin created twice")
	}
	if u.Email != "admin@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}

	// the first password still works
	if _, _, err := s.Login(context.Background(), "admin@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestAuthService_LoginAndParse(t *testing.T) {
	ctx := context.Background()
	s := newTestAuth(t)

	token, u, err := s.Login(ctx, "ADMIN@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	id, err := s.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != u.ID {
		t.Fatalf("token carries %s, want %s", id, u.ID)
	}

	me, err := s.Me(ctx, id)
	if err != nil || me.Name != "Betinha" {
		t.Fatalf("me: %+v %v", me, err)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	s := newTestAuth(t)

	_, _, err := s.Login(ctx, "admin@example.com", "wrong")
	assertKind(t, err, ErrUnauthorized)

	_, _, err = s.Login(ctx, "nobody@example.com", "s3cret-pass")
	assertKind(t, err, ErrUnauthorized)

	_, _, err = s.Login(ctx, "", "x")
	assertKind(t, err, ErrValidation)
}

func TestAuthService_RejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestAuth(t)

	token, _, err := s.Login(ctx, "admin@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ParseToken(token)
	assertKind(t, err, ErrUnauthorized)
	s.now = time.Now

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = s.ParseToken(foreign)
	assertKind(t, err, ErrUnauthorized)

	_, err = s.ParseToken("garbage")
	assertKind(t, err, ErrUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	s := newTestAuth(t)

	_, u, err := s.Login(ctx, "admin@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	assertKind(t, s.ChangePassword(ctx, u.ID, "s3cret-pass", "short"), ErrValidation)
	assertKind(t, s.ChangePassword(ctx, u.ID, "wrong", "long-enough-pass"), ErrUnauthorized)

	if err := s.ChangePassword(ctx, u.ID, "s3cret-pass", "long-enough-pass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := s.Login(ctx, "admin@example.com", "long-enough-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
