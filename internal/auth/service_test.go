package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func expectRefreshInsert(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestRegister(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "Alice", "alice@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	expectRefreshInsert(mock)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.TokenType != "Bearer" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)

	if _, _, err := svc.Register(context.Background(), RegisterRequest{Name: "Alice"}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLogin(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("user-a", "Alice", "alice@example.com", string(hash), now, now))
	expectRefreshInsert(mock)

	user, tokens, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "user-a" || tokens.AccessToken == "" {
		t.Fatalf("unexpected result: %+v %+v", user, tokens)
	}

	// the access token round-trips through validation
	userID, err := svc.ValidateAccessToken(tokens.AccessToken)
	if err != nil || userID != "user-a" {
		t.Fatalf("validate access: %v %q", err, userID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("user-a", "Alice", "alice@example.com", string(hash), now, now))

	if _, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}); err == nil {
		t.Fatal("expected invalid credentials error")
	}
}

func TestValidateRefreshToken(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)

	expectRefreshInsert(mock)
	tokens, err := svc.GenerateTokens(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-a", time.Now().Add(time.Hour)))

	userID, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil || userID != "user-a" {
		t.Fatalf("validate refresh: %v %q", err, userID)
	}
}

func TestValidateRefreshTokenExpiredRow(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)

	expectRefreshInsert(mock)
	tokens, err := svc.GenerateTokens(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-a", time.Now().Add(-time.Hour)))

	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService("test-secret", mock)
	other := NewService("other-secret", mock)

	expectRefreshInsert(mock)
	tokens, err := svc.GenerateTokens(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.ValidateAccessToken(tokens.AccessToken); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
