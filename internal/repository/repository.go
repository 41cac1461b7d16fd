// Package repository provides the PostgreSQL-backed catalog store: videos,
// users, watch history and transcode jobs.
package repository

import (
	"context"
	"fmt"

	"github.com/hlsrec/hls-recommender-go/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles all database operations for the catalog.
type Repository struct {
	db *pgxpool.Pool
}

// New creates a new Repository instance with the provided database connection pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Ping checks the database connection health.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// withTx runs fn inside a transaction, committing only when fn returns nil.
func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit transaction")
	}
	return nil
}

// MissingRecordError names the referenced row that did not exist.
// It unwraps to db.ErrNotFound.
type MissingRecordError struct {
	Entity string
	ID     int64
}

func (e *MissingRecordError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Entity, e.ID, db.ErrNotFound)
}

func (e *MissingRecordError) Unwrap() error {
	return db.ErrNotFound
}
