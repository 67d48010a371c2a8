package directory

import (
	"context"
	"errors"
	"time"

	"backend-tripmate/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

// User is the public identity record; identity is owned by the relational
// store, this package only reads it.
type User struct {
	ID        string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Service resolves users by email or id for the invitation flows.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) LookupByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, created_at
		FROM users WHERE email = $1
	`, email)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, created_at
		FROM users WHERE id = $1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		return User{}, ErrUserNotFound
	}
	return u, nil
}
