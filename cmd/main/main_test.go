package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/usecase"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// stubImportWorker records submitted jobs without running them.
type stubImportWorker struct {
	jobs      []usecase.ImportJobData
	submitErr error
}

func (s *stubImportWorker) SubmitJob(jobData usecase.ImportJobData) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.jobs = append(s.jobs, jobData)
	return nil
}

func (s *stubImportWorker) Stop() {}

const uploadBody = "email,first_name\na@x.com,Ada\n"

func postImport(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(uploadBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestImportHandler_QueuesJobWithDefaults(t *testing.T) {
	worker := &stubImportWorker{}
	handler := importHandler(worker, tenant.EnvSandbox, true, false)

	rec := postImport(t, handler, "/import?filename=contacts.csv")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, worker.jobs, 1)
	job := worker.jobs[0]
	assert.Equal(t, "contacts.csv", job.Filename)
	assert.Equal(t, tenant.EnvSandbox, job.Environment)
	assert.True(t, job.DryRun)
	assert.Equal(t, uploadBody, string(job.Data))

	requestID, err := tenant.FromRequestIDContext(job.Ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, requestID)
	assert.Contains(t, rec.Body.String(), requestID)
}

func TestImportHandler_LiveNonDryRequiresConfirm(t *testing.T) {
	worker := &stubImportWorker{}
	handler := importHandler(worker, tenant.EnvLive, true, false)

	rec := postImport(t, handler, "/import?dryRun=false")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, worker.jobs)
}

func TestImportHandler_LiveNonDryAllowedWhenConfirmed(t *testing.T) {
	worker := &stubImportWorker{}
	handler := importHandler(worker, tenant.EnvLive, true, true)

	rec := postImport(t, handler, "/import?dryRun=false")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, worker.jobs, 1)
	assert.False(t, worker.jobs[0].DryRun)
}

func TestImportHandler_SandboxNonDryNeedsNoConfirm(t *testing.T) {
	worker := &stubImportWorker{}
	handler := importHandler(worker, tenant.EnvSandbox, true, false)

	rec := postImport(t, handler, "/import?dryRun=false")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, worker.jobs, 1)
	assert.False(t, worker.jobs[0].DryRun)
}

func TestImportHandler_PoolOverload(t *testing.T) {
	worker := &stubImportWorker{submitErr: ants.ErrPoolOverload}
	handler := importHandler(worker, tenant.EnvSandbox, true, false)

	rec := postImport(t, handler, "/import")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportHandler_RejectsBadRequests(t *testing.T) {
	worker := &stubImportWorker{}
	handler := importHandler(worker, tenant.EnvSandbox, true, false)

	t.Run("Method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/import", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("Empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(""))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Invalid dryRun value", func(t *testing.T) {
		rec := postImport(t, handler, "/import?dryRun=maybe")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Empty(t, worker.jobs)
}
