package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidPosition marks rejected template positioning input.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a write rejected by a uniqueness rule.
	ErrConflict = errors.New("conflict")
)

// NotFoundError reports a primary key that resolved to no row.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("can't find %s with id=%s", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// InvalidPositionError rejects positioning input before storage is touched.
type InvalidPositionError struct {
	Reason string
}

func (e *InvalidPositionError) Error() string {
	if e.Reason == "" {
		return "invalid position"
	}
	return "invalid position: " + e.Reason
}

func (e *InvalidPositionError) Is(target error) bool { return target == ErrInvalidPosition }

func InvalidPosition(reason string) error {
	return &InvalidPositionError{Reason: reason}
}

// ValidationError carries a stable code such as MISSING_SUITE_ID.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return strings.ToLower(strings.ReplaceAll(e.Code, "_", " "))
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrInvalidArgument
}

func Validation(code, msg string) error {
	return &ValidationError{Code: code, Message: strings.TrimSpace(msg)}
}

// MapStorageError classifies driver failures into this package's kinds.
// Errors that already carry a kind pass through untouched.
func MapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidPosition),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err)) // unique_violation
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key") {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
