package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/docstore/internal/pgtest"
	"github.com/Aleph-Alpha/docstore/v1/logger"
	"github.com/Aleph-Alpha/docstore/v1/postgres"
)

type widget struct {
	ID   string `gorm:"primaryKey;size:64"`
	Name string `gorm:"uniqueIndex"`
}

func TestPostgresWithFXModule(t *testing.T) {
	container := pgtest.Start(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	mockLogger := logger.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	var pg *postgres.Postgres
	app := fxtest.New(t,
		fx.Provide(
			func() postgres.Config { return container.Config },
			func() logger.Logger { return mockLogger },
		),
		postgres.FXModule,
		fx.Populate(&pg),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, pg)
	require.NoError(t, pg.HealthCheck(ctx))

	t.Run("vector extension is installed", func(t *testing.T) {
		var installed bool
		err := pg.DB().Raw("SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')").Scan(&installed).Error
		require.NoError(t, err)
		assert.True(t, installed)
	})

	t.Run("migrate and transaction", func(t *testing.T) {
		require.NoError(t, pg.Migrate(ctx, &widget{}))

		err := pg.Transaction(ctx, func(tx *gorm.DB) error {
			return tx.Create(&widget{ID: "a", Name: "first"}).Error
		})
		require.NoError(t, err)

		rollback := errors.New("rollback")
		err = pg.Transaction(ctx, func(tx *gorm.DB) error {
			if err := tx.Create(&widget{ID: "b", Name: "second"}).Error; err != nil {
				return err
			}
			return rollback
		})
		assert.ErrorIs(t, err, rollback)

		var count int64
		require.NoError(t, pg.DB().Model(&widget{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("duplicate key is translated", func(t *testing.T) {
		err := pg.DB().WithContext(ctx).Create(&widget{ID: "c", Name: "first"}).Error
		require.Error(t, err)
		assert.ErrorIs(t, pg.TranslateError(err), postgres.ErrDuplicateKey)
		assert.False(t, pg.IsRetryable(err))
	})

	t.Run("missing table is translated", func(t *testing.T) {
		err := pg.DB().WithContext(ctx).Exec("SELECT * FROM does_not_exist").Error
		assert.ErrorIs(t, postgres.TranslateError(err), postgres.ErrUndefinedTable)
	})
}
