package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Common database errors. They abstract away gorm and driver specifics so
// callers can match them with errors.Is.
var (
	// ErrRecordNotFound is returned when a query doesn't find any matching records
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert or update violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrForeignKey is returned when an operation violates a foreign key constraint
	ErrForeignKey = errors.New("foreign key violation")

	// ErrInvalidData is returned when the data being saved doesn't meet validation rules
	ErrInvalidData = errors.New("invalid data")

	// ErrUndefinedTable is returned when the referenced table does not exist
	ErrUndefinedTable = errors.New("undefined table")

	// ErrUndefinedColumn is returned when the referenced column does not exist
	ErrUndefinedColumn = errors.New("undefined column")

	// ErrUndefinedFunction usually means the vector extension is missing
	ErrUndefinedFunction = errors.New("undefined function or operator")

	// ErrConnectionFailed is returned for connection level failures
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTimeout is returned when a statement is cancelled or times out
	ErrTimeout = errors.New("timeout")

	// ErrSerialization is returned for serialization failures and deadlocks
	ErrSerialization = errors.New("serialization failure")
)

// PostgreSQL SQLSTATE codes handled by TranslateError.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeUndefinedTable       = "42P01"
	codeUndefinedColumn      = "42703"
	codeUndefinedFunction    = "42883"
	codeUndefinedObject      = "42704"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
)

// TranslateError converts gorm and PostgreSQL errors into the sentinels
// above, wrapping the original error. Unknown errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrRecordNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	case errors.Is(err, gorm.ErrInvalidData):
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case codeNotNullViolation, codeCheckViolation, codeInvalidText:
			return fmt.Errorf("%w: %w", ErrInvalidData, err)
		case codeUndefinedTable:
			return fmt.Errorf("%w: %w", ErrUndefinedTable, err)
		case codeUndefinedColumn:
			return fmt.Errorf("%w: %w", ErrUndefinedColumn, err)
		case codeUndefinedFunction, codeUndefinedObject:
			return fmt.Errorf("%w: %w", ErrUndefinedFunction, err)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %w", ErrSerialization, err)
		case codeQueryCanceled:
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		case codeAdminShutdown, codeCannotConnectNow:
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}
		if len(pgErr.Code) >= 2 {
			switch pgErr.Code[:2] {
			case "08":
				return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
			case "22":
				return fmt.Errorf("%w: %w", ErrInvalidData, err)
			}
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return err
}

// IsRetryable reports whether an operation that failed with err may
// succeed if attempted again.
func IsRetryable(err error) bool {
	translated := TranslateError(err)
	switch {
	case errors.Is(translated, ErrConnectionFailed),
		errors.Is(translated, ErrSerialization),
		errors.Is(translated, ErrTimeout):
		return true
	default:
		return false
	}
}
