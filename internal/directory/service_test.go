package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
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

func TestLookupByEmail(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, name, email, created_at FROM users WHERE email`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow("user-a", "Alice", "alice@example.com", time.Now()))

	user, err := svc.LookupByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if user.ID != "user-a" || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLookupByEmailMissing(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, name, email, created_at FROM users WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}))

	if _, err := svc.LookupByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, name, email, created_at FROM users WHERE id`).
		WithArgs("user-a").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow("user-a", "Alice", "alice@example.com", time.Now()))

	user, err := svc.GetUser(context.Background(), "user-a")
	if err != nil || user.Email != "alice@example.com" {
		t.Fatalf("get user: %v %+v", err, user)
	}
}

func TestGetUserMissing(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, name, email, created_at FROM users WHERE id`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}))

	if _, err := svc.GetUser(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
