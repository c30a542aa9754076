package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moviemex/moviemex/internal/apperrors"
)

// UserStore handles admin user records. Content managers sign in with a
// username and password and receive a bearer token for the admin endpoints.
type UserStore struct {
	db *sql.DB
}

// User represents an admin panel account.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // never expose in JSON
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// EnsureAdmin creates the admin account on first boot if it does not exist.
// An empty password leaves the store untouched.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = $1`, username).Scan(&count); err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, $2, 'admin', $3)
	`, username, string(hash), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// Authenticate verifies the credentials and returns the matching user.
// Wrong username and wrong password are indistinguishable to the caller.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var user User
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &hash, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewUnauthorizedError("invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid username or password")
	}

	return &user, nil
}
