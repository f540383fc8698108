package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Transaction runs fn inside a database transaction. A non-nil error from
// fn rolls the transaction back.
func (p *Postgres) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.DB().WithContext(ctx).Transaction(fn)
}

// Migrate creates or updates the tables of the given models.
func (p *Postgres) Migrate(ctx context.Context, models ...interface{}) error {
	if err := p.DB().WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate models: %w", TranslateError(err))
	}
	return nil
}

// EnsureVectorExtension installs the pgvector extension if it is missing.
func (p *Postgres) EnsureVectorExtension(ctx context.Context) error {
	if err := p.DB().WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to create vector extension: %w", TranslateError(err))
	}
	return nil
}

// TranslateError maps gorm and driver errors onto this package's sentinels.
// It is the method form of the package-level TranslateError.
func (p *Postgres) TranslateError(err error) error {
	return TranslateError(err)
}

// IsRetryable reports whether err is worth retrying.
func (p *Postgres) IsRetryable(err error) bool {
	return IsRetryable(err)
}
