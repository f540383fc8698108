package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func TestGracefulShutdown_ReportsPoolError(t *testing.T) {
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	p := &Postgres{shutdownSignal: make(chan struct{})}
	p.client.Store(db)

	err = p.GracefulShutdown()
	assert.ErrorIs(t, err, gorm.ErrInvalidDB)

	select {
	case <-p.shutdownSignal:
	default:
		t.Fatal("shutdown signal was not closed")
	}

	assert.ErrorIs(t, p.GracefulShutdown(), gorm.ErrInvalidDB)
}
