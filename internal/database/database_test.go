package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"chirp/internal/config"
	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fastPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"pg connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"pg too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"pg cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"pg serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"record not found", gorm.ErrRecordNotFound, false},
		{"plain", errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.True(t, IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}

func TestRetry_RecoversFromTransientFailure(t *testing.T) {
	before := testutil.ToFloat64(observability.StorageRetries)
	calls := 0

	got, err := Retry(context.Background(), fastPolicy, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", driver.ErrBadConn
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, before+2, testutil.ToFloat64(observability.StorageRetries))
}

func TestRetry_PermanentErrorIsNotRetried(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy, func(context.Context) (int, error) {
		calls++
		return 0, gorm.ErrRecordNotFound
	})

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustionIsUnavailable(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy, func(context.Context) (bool, error) {
		calls++
		return false, &pgconn.PgError{Code: "57P01"}
	})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnavailable, appErr.Code)
	assert.Equal(t, int(fastPolicy.MaxAttempts), calls)
}

func TestRetry_ZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{}, func(context.Context) (int64, error) {
		calls++
		return 0, driver.ErrBadConn
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyFromConfig(t *testing.T) {
	assert.Equal(t, DefaultRetryPolicy(), RetryPolicyFromConfig(nil))

	p := RetryPolicyFromConfig(&config.Config{RetryMaxAttempts: 5, RetryBaseDelayMS: 20})
	assert.Equal(t, uint(5), p.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, p.BaseDelay)
}

func TestGet_FailureIsNotCached(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	_, err := Get(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)

	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite, DBSQLitePath: ":memory:"}
	first, err := Get(cfg)
	require.NoError(t, err)
	second, err := Get(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)

	for _, model := range PersistentModels() {
		assert.True(t, first.Migrator().HasTable(model), "%T should be migrated", model)
	}

	require.NoError(t, Close())
	require.NoError(t, Close())

	third, err := Get(cfg)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
