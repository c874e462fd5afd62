package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oasis-cafe/oasis-service/internal/models"
)

// UserRepository handles user data access
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUserID retrieves a user by their human-readable ID
func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT user_id, username, email, password, role, photo, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT user_id, username, email, password, role, photo, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// Create inserts a new user with a freshly generated U-prefixed ID. The ID is
// computed read-max-then-increment, so the insert is retried a bounded number
// of times when a concurrent registration wins the same ID.
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	insert := `
		INSERT INTO users (user_id, username, email, password, role, photo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, username, email, password, role, photo, created_at, updated_at
	`

	var lastErr error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		var lastID string
		err := r.db.GetContext(ctx, &lastID,
			`SELECT user_id FROM users ORDER BY user_id DESC LIMIT 1`)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get last user ID: %w", err)
		}

		var created models.User
		err = r.db.GetContext(ctx, &created, insert,
			nextSequentialID("U", lastID),
			user.Username,
			user.Email,
			user.Password,
			user.Role,
			user.Photo,
		)
		if err == nil {
			return &created, nil
		}
		if isEmailViolation(err) {
			return nil, ErrDuplicateEmail
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to create user after %d attempts: %w", maxIDRetries, lastErr)
}

// Update applies a partial profile update. Nil request fields keep their
// stored values.
func (r *UserRepository) Update(ctx context.Context, req models.UserUpdateRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE($1, username),
		    email = COALESCE($2, email),
		    photo = COALESCE($3, photo),
		    password = COALESCE($4, password),
		    updated_at = $5
		WHERE user_id = $6
		RETURNING user_id, username, email, password, role, photo, created_at, updated_at
	`

	var updated models.User
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		req.Username,
		req.Email,
		req.Photo,
		req.Password,
		time.Now(),
		req.UserID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isEmailViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &updated, nil
}

// UpdatePassword replaces a user's password hash, keyed by email
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE users
		SET password = $1, updated_at = $2
		WHERE email = $3
	`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
