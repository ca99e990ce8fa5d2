package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	netsuitemock "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/netsuite/mock"
)

// --- PushToNetSuite Tests --- //

func TestPushToNetSuite_CreateNewCustomer(t *testing.T) {
	svc, m := newTestService()
	api := new(netsuitemock.ClientMock)
	ctx := sandboxContext(t)
	contacts := []model.ContactPayload{{HubspotID: "hs-1", Email: "ada@example.com"}}

	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-1", model.SystemFwdCRM).
		Return(&model.IDMapping{TargetID: "CUST-AAAA0001"}, nil)
	m.mappingRepo.On("Get", mock.Anything, model.SystemFwdCRM, "CUST-AAAA0001", model.SystemNetsuite).
		Return(nil, apperrors.ErrNotFound)
	api.On("CreateCustomer", mock.Anything, contacts[0]).Return("NS-3001", nil)
	m.mappingRepo.On("Put", mock.Anything, mock.MatchedBy(func(mp model.IDMapping) bool {
		return mp.SourceSystem == model.SystemFwdCRM && mp.SourceID == "CUST-AAAA0001" &&
			mp.TargetSystem == model.SystemNetsuite && mp.TargetID == "NS-3001"
	})).Return(nil)
	m.notifier.On("PublishRunSummary", mock.Anything, mock.AnythingOfType("model.RunSummaryEvent")).Return(nil)

	summary, err := svc.PushToNetSuite(ctx, contacts, api, false)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Failed)
	api.AssertExpectations(t)
	m.mappingRepo.AssertExpectations(t)
}

func TestPushToNetSuite_UpdateExistingCustomer(t *testing.T) {
	svc, m := newTestService()
	api := new(netsuitemock.ClientMock)
	ctx := sandboxContext(t)
	contacts := []model.ContactPayload{{HubspotID: "hs-2", Email: "grace@example.com"}}

	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-2", model.SystemFwdCRM).
		Return(&model.IDMapping{TargetID: "CUST-BBBB0002"}, nil)
	m.mappingRepo.On("Get", mock.Anything, model.SystemFwdCRM, "CUST-BBBB0002", model.SystemNetsuite).
		Return(&model.IDMapping{TargetID: "NS-3002"}, nil)
	api.On("UpdateCustomer", mock.Anything, "NS-3002", contacts[0]).Return(nil)
	m.notifier.On("PublishRunSummary", mock.Anything, mock.AnythingOfType("model.RunSummaryEvent")).Return(nil)

	summary, err := svc.PushToNetSuite(ctx, contacts, api, false)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	m.mappingRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	api.AssertExpectations(t)
}

func TestPushToNetSuite_NotYetMigrated(t *testing.T) {
	svc, m := newTestService()
	api := new(netsuitemock.ClientMock)
	ctx := sandboxContext(t)
	contacts := []model.ContactPayload{{HubspotID: "hs-9", Email: "skipped@example.com"}}

	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-9", model.SystemFwdCRM).
		Return(nil, apperrors.ErrNotFound)
	m.notifier.On("PublishRunSummary", mock.Anything, mock.AnythingOfType("model.RunSummaryEvent")).Return(nil)

	summary, err := svc.PushToNetSuite(ctx, contacts, api, false)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0].Message, "not yet migrated")
	api.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestPushToNetSuite_DryRunMakesNoAPICalls(t *testing.T) {
	svc, m := newTestService()
	api := new(netsuitemock.ClientMock)
	ctx := sandboxContext(t)
	contacts := []model.ContactPayload{
		{HubspotID: "hs-1", Email: "create@example.com"},
		{HubspotID: "hs-2", Email: "update@example.com"},
	}

	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-1", model.SystemFwdCRM).
		Return(&model.IDMapping{TargetID: "CUST-AAAA0001"}, nil)
	m.mappingRepo.On("Get", mock.Anything, model.SystemFwdCRM, "CUST-AAAA0001", model.SystemNetsuite).
		Return(nil, apperrors.ErrNotFound)
	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-2", model.SystemFwdCRM).
		Return(&model.IDMapping{TargetID: "CUST-BBBB0002"}, nil)
	m.mappingRepo.On("Get", mock.Anything, model.SystemFwdCRM, "CUST-BBBB0002", model.SystemNetsuite).
		Return(&model.IDMapping{TargetID: "NS-3002"}, nil)

	summary, err := svc.PushToNetSuite(ctx, contacts, api, true)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	api.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything, mock.Anything)
	m.mappingRepo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "PublishRunSummary", mock.Anything, mock.Anything)
}

func TestPushToNetSuite_UpstreamAPIFailureIsolated(t *testing.T) {
	svc, m := newTestService()
	api := new(netsuitemock.ClientMock)
	ctx := sandboxContext(t)
	contacts := []model.ContactPayload{
		{HubspotID: "hs-1", Email: "fail@example.com"},
		{HubspotID: "hs-2", Email: "ok@example.com"},
	}

	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-1", model.SystemFwdCRM).
		Return(&model.IDMapping{TargetID: "CUST-AAAA0001"}, nil)
	m.mappingRepo.On("Get", mock.Anything, model.SystemFwdCRM, "CUST-AAAA0001", model.SystemNetsuite).
		Return(nil, apperrors.ErrNotFound)
	api.On("CreateCustomer", mock.Anything, contacts[0]).Return("", errors.New("503 service unavailable"))

	m.mappingRepo.On("Get", mock.Anything, model.SystemHubspot, "hs-2", model.SystemFwdCRM).
		Return(&model.IDMapping{TargetID: "CUST-BBBB0002"}, nil)
	m.mappingRepo.On("Get", mock.Anything, model.SystemFwdCRM, "CUST-BBBB0002", model.SystemNetsuite).
		Return(&model.IDMapping{TargetID: "NS-3002"}, nil)
	api.On("UpdateCustomer", mock.Anything, "NS-3002", contacts[1]).Return(nil)
	m.notifier.On("PublishRunSummary", mock.Anything, mock.AnythingOfType("model.RunSummaryEvent")).Return(nil)

	summary, err := svc.PushToNetSuite(ctx, contacts, api, false)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Updated)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "fail@example.com", summary.Errors[0].Email)
}

func TestPushToNetSuite_MissingSourceID(t *testing.T) {
	svc, m := newTestService()
	api := new(netsuitemock.ClientMock)
	ctx := sandboxContext(t)
	contacts := []model.ContactPayload{{Email: "noid@example.com"}}

	m.notifier.On("PublishRunSummary", mock.Anything, mock.AnythingOfType("model.RunSummaryEvent")).Return(nil)

	summary, err := svc.PushToNetSuite(ctx, contacts, api, false)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	m.mappingRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPushToNetSuite_NilClient(t *testing.T) {
	svc, _ := newTestService()
	ctx := sandboxContext(t)

	_, err := svc.PushToNetSuite(ctx, []model.ContactPayload{{HubspotID: "hs-1", Email: "x@example.com"}}, nil, false)

	assert.Error(t, err)
	var fatal *apperrors.FatalError
	assert.ErrorAs(t, err, &fatal)
}
