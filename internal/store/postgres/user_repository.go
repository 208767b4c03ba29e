package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opsdash/opsdash/internal/user"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new operator account
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, active, email_alerts, daily_digest, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.Name, u.Role, u.Active,
		u.Notifications.EmailAlerts, u.Notifications.DailyDigest,
		u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves an operator by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, email, name, role, active, email_alerts, daily_digest, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

// GetByEmail retrieves an operator by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, email, name, role, active, email_alerts, daily_digest, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`, email))
}

// Update updates an operator account
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users
		SET name = $2, role = $3, active = $4, email_alerts = $5, daily_digest = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Name, u.Role, u.Active,
		u.Notifications.EmailAlerts, u.Notifications.DailyDigest, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// List lists operators with pagination
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, email, name, role, active, email_alerts, daily_digest, password_hash, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active,
			&u.Notifications.EmailAlerts, &u.Notifications.DailyDigest,
			&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	return users, nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active,
		&u.Notifications.EmailAlerts, &u.Notifications.DailyDigest,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
