package repository

import (
	"context"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/models"
)

// CreateUser inserts a user. Duplicate usernames or emails yield db.ErrDuplicateKey.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, user.Username, user.Email).Scan(&user.ID, &user.CreatedAt)
	return db.WrapError(err, "create user")
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, email, created_at FROM users WHERE id = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "get user")
	}
	return &user, nil
}

// EnsureUser returns the user with the given username, creating it when absent.
func (r *Repository) EnsureUser(ctx context.Context, username, email string) (*models.User, error) {
	query := `
		WITH inserted AS (
			INSERT INTO users (username, email)
			VALUES ($1, $2)
			ON CONFLICT (username) DO NOTHING
			RETURNING id, username, email, created_at
		)
		SELECT id, username, email, created_at FROM inserted
		UNION ALL
		SELECT id, username, email, created_at FROM users WHERE username = $1
		LIMIT 1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, username, email).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, db.WrapError(err, "ensure user")
	}
	return &user, nil
}
