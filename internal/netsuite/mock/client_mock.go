package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
)

// ClientMock mocks the netsuite.Client interface
type ClientMock struct {
	mock.Mock
}

// CreateCustomer mocks the CreateCustomer method
func (m *ClientMock) CreateCustomer(ctx context.Context, payload model.ContactPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// UpdateCustomer mocks the UpdateCustomer method
func (m *ClientMock) UpdateCustomer(ctx context.Context, netsuiteID string, payload model.ContactPayload) error {
	args := m.Called(ctx, netsuiteID, payload)
	return args.Error(0)
}
