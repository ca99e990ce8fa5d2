package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
)

// Note on SQL Query Matching in Tests:
// ----------------------------------
// GORM generates SQL queries with additional clauses like ORDER BY and LIMIT
// that can make exact SQL string matching brittle. We use
// sqlmock.QueryMatcherEqual and spell out the full generated statement,
// with AnyTime / AnyJSON / sqlmock.AnyArg() for parameters whose value the
// repository produces itself (generated ids, timestamps).

// Placeholder for AnyTime argument matcher
type AnyTime struct{}

// Match satisfies sqlmock.Argument interface
func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

// Placeholder for JSON fields like map[string]interface{}
type AnyJSON struct{}

// Match satisfies sqlmock.Argument interface
func (a AnyJSON) Match(v driver.Value) bool {
	switch v.(type) {
	case []byte, string, nil:
		return true
	default:
		return false
	}
}

// --- Test Helpers ---

// newTestRepo creates a PostgresRepo backed by sqlmock.
func newTestRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	logger.Log = zaptest.NewLogger(t).Named("test")
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return &PostgresRepo{db: gormDB, actor: "migration_engine"}, mock
}

// --- Test Cases ---

func TestGenerateID(t *testing.T) {
	first := generateID("CUST")
	second := generateID("CUST")

	assert.True(t, strings.HasPrefix(first, "CUST-"))
	assert.Len(t, first, len("CUST-")+8)
	assert.Equal(t, strings.ToUpper(first), first)
	assert.NotEqual(t, first, second)

	assert.True(t, strings.HasPrefix(generateID("MAP"), "MAP-"))
	assert.True(t, strings.HasPrefix(generateID("AUD"), "AUD-"))
	assert.True(t, strings.HasPrefix(generateID("JOB"), "JOB-"))
}

func TestIsTransientError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "Context deadline exceeded",
			err:      context.DeadlineExceeded,
			expected: true,
		},
		{
			name:     "Wrapped context deadline exceeded",
			err:      fmt.Errorf("operation failed: %w", context.DeadlineExceeded),
			expected: true,
		},
		{
			name:     "GORM record not found",
			err:      gorm.ErrRecordNotFound,
			expected: false,
		},
		{
			name:     "PG error - connection exception (08000)",
			err:      &pgconn.PgError{Code: "08000"},
			expected: true,
		},
		{
			name:     "PG error - insufficient resources (53100)",
			err:      &pgconn.PgError{Code: "53100"},
			expected: true,
		},
		{
			name:     "PG error - deadlock detected (40P01)",
			err:      &pgconn.PgError{Code: "40P01"},
			expected: true,
		},
		{
			name:     "PG error - serialization failure (40001)",
			err:      &pgconn.PgError{Code: "40001"},
			expected: true,
		},
		{
			name:     "PG error - syntax error (42601)",
			err:      &pgconn.PgError{Code: "42601"},
			expected: false,
		},
		{
			name:     "Network error - connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			expected: true,
		},
		{
			name:     "Network error - i/o timeout",
			err:      errors.New("read tcp 10.0.0.1:1234->10.0.0.2:5432: i/o timeout"),
			expected: true,
		},
		{
			name:     "Network error - broken pipe",
			err:      errors.New("write: broken pipe"),
			expected: true,
		},
		{
			name:     "Generic non-transient error",
			err:      errors.New("some other database error"),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := isTransientError(tc.err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestCheckConstraintViolation(t *testing.T) {
	t.Run("Unique violation maps to duplicate", func(t *testing.T) {
		err := checkConstraintViolation(&pgconn.PgError{Code: "23505", ConstraintName: "idx_customers_email_environment"})
		assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	})

	t.Run("Nil passes through", func(t *testing.T) {
		assert.NoError(t, checkConstraintViolation(nil))
	})

	t.Run("Other error wrapped as database error", func(t *testing.T) {
		err := checkConstraintViolation(errors.New("boom"))
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestRetryableOperation_PermanentErrorNotRetried(t *testing.T) {
	logger.Log = zaptest.NewLogger(t).Named("test")
	attempts := 0
	policy := newRetryPolicy(context.Background(), readRetryMaxElapsedTime)
	err := retryableOperation(context.Background(), policy, "TestOp", func() error {
		attempts++
		return fmt.Errorf("%w: bad input", apperrors.ErrBadRequest)
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, 1, attempts)
}

func TestRetryableOperation_TransientErrorRetried(t *testing.T) {
	logger.Log = zaptest.NewLogger(t).Named("test")
	attempts := 0
	policy := newRetryPolicy(context.Background(), readRetryMaxElapsedTime)
	err := retryableOperation(context.Background(), policy, "TestOp", func() error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestPing(t *testing.T) {
	repo, mock := newTestRepo(t)

	err := repo.Ping(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
