package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrRecordNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrDuplicateKey},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, ErrForeignKey},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicateKey},
		{"not null violation", &pgconn.PgError{Code: "23502"}, ErrInvalidData},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, ErrUndefinedTable},
		{"undefined column", &pgconn.PgError{Code: "42703"}, ErrUndefinedColumn},
		{"undefined operator", &pgconn.PgError{Code: "42883"}, ErrUndefinedFunction},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, ErrSerialization},
		{"connection exception", &pgconn.PgError{Code: "08006"}, ErrConnectionFailed},
		{"data exception", &pgconn.PgError{Code: "22000"}, ErrInvalidData},
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestTranslateError_Passthrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, TranslateError(plain))

	unknown := &pgconn.PgError{Code: "XX000"}
	assert.Equal(t, error(unknown), TranslateError(unknown))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "57P03"}))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(gorm.ErrRecordNotFound))
	assert.False(t, IsRetryable(nil))
}

func TestConnectionDSN(t *testing.T) {
	c := Connection{Host: "db", Port: "5432", User: "u", Password: "p", DbName: "docs"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=docs sslmode=disable", c.DSN())

	c.SSLMode = "require"
	assert.Contains(t, c.DSN(), "sslmode=require")
}
