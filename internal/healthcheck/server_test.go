package healthcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandleHealth(t *testing.T) {
	server := NewServer("0", nil, zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, utils.UnmarshalJSON(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UP", resp.Status)
}

func TestHandleReady_DatabaseUp(t *testing.T) {
	db := pingerFunc(func(ctx context.Context) error { return nil })
	server := NewServer("0", db, zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReady(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, utils.UnmarshalJSON(rec.Body.Bytes(), &resp))
	assert.Equal(t, "READY", resp.Status)
	assert.Equal(t, "ok", resp.Details["database"])
}

func TestHandleReady_DatabaseDown(t *testing.T) {
	db := pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })
	server := NewServer("0", db, zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReady(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp HealthResponse
	require.NoError(t, utils.UnmarshalJSON(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_READY", resp.Status)
}

func TestHandleReady_NoDatabaseConfigured(t *testing.T) {
	server := NewServer("0", nil, zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReady(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
