// Package auth stores user accounts, issues and revokes access tokens, and
// signs the editor in against a notable server.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/csheth/notable/internal/apperr"
)

const minPasswordLen = 8

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Users is the account table.
type Users struct {
	db   *sql.DB
	now  func() time.Time
	cost int
}

// NewUsers returns the account store over an opened database.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db, now: time.Now, cost: bcrypt.DefaultCost}
}

// Register creates an account.
func (u *Users) Register(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	if len(password) < minPasswordLen {
		return User{}, apperr.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return User{}, apperr.Internal(err)
	}
	user := User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: u.now().UTC().Truncate(time.Millisecond),
	}
	_, err = u.db.ExecContext(ctx,
		`INSERT INTO users(id, email, password_hash, created_at) VALUES(?, ?, ?, ?)`,
		user.ID, user.Email, string(hash), user.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, apperr.Conflict("email already registered")
		}
		return User{}, fmt.Errorf("register user: %w", err)
	}
	return user, nil
}

// Verify checks credentials and returns the account.
func (u *Users) Verify(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	var (
		user    User
		hash    string
		created int64
	)
	err = u.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return User{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	user.CreatedAt = time.UnixMilli(created).UTC()
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Invalid("a valid email is required")
	}
	return email, nil
}
