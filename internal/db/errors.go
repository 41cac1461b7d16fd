package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinels a ConstraintError unwraps to.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
)

// constraintKinds maps PostgreSQL integrity SQLSTATEs to sentinels.
var constraintKinds = map[string]error{
	"23505": ErrDuplicateKey,
	"23503": ErrForeignKeyViolation,
	"23514": ErrCheckViolation,
}

// ConstraintError reports a statement rejected by a table constraint.
type ConstraintError struct {
	Op         string
	Constraint string
	Kind       error
	Cause      *pgconn.PgError
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %v (constraint: %s)", e.Op, e.Kind, e.Constraint)
}

// Unwrap exposes both the sentinel kind and the driver error.
func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// WrapError prefixes err with op and classifies pgx/PostgreSQL failures so
// callers can test them with the Is helpers below.
func WrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if kind, ok := constraintKinds[pgErr.Code]; ok {
		return &ConstraintError{Op: op, Constraint: pgErr.ConstraintName, Kind: kind, Cause: pgErr}
	}
	return fmt.Errorf("%s: database error [%s]: %w", op, pgErr.Code, err)
}

// ConstraintName returns the violated constraint, or "" when err is not a
// constraint violation.
func ConstraintName(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsForeignKeyViolation reports a reference to a row that no longer exists.
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation)
}

// IsCheckViolation reports a value outside a column's CHECK range.
func IsCheckViolation(err error) bool {
	return errors.Is(err, ErrCheckViolation)
}
