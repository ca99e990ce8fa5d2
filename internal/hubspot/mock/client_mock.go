package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
)

// ClientMock mocks the hubspot.Client interface
type ClientMock struct {
	mock.Mock
}

// FetchContacts mocks the FetchContacts method
func (m *ClientMock) FetchContacts(ctx context.Context) ([]model.ContactPayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContactPayload), args.Error(1)
}

// FetchCompanies mocks the FetchCompanies method
func (m *ClientMock) FetchCompanies(ctx context.Context) ([]model.CompanyPayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CompanyPayload), args.Error(1)
}

// FetchDeals mocks the FetchDeals method
func (m *ClientMock) FetchDeals(ctx context.Context) ([]model.DealPayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DealPayload), args.Error(1)
}
