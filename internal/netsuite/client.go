// Package netsuite holds the minimal NetSuite-facing surface the forward
// push needs. Production credentials are never wired in this utility; the
// sandbox client stands in for the real REST API.
package netsuite

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
)

// Client is the NetSuite customer API surface used by the forward push.
type Client interface {
	CreateCustomer(ctx context.Context, payload model.ContactPayload) (string, error)
	UpdateCustomer(ctx context.Context, netsuiteID string, payload model.ContactPayload) error
}

// SandboxClient simulates the NetSuite customer API. Created customers get a
// fabricated NS- id and live in memory for the lifetime of the process.
type SandboxClient struct {
	mu        sync.Mutex
	customers map[string]model.ContactPayload
	accountID string
}

// NewSandboxClient creates a new sandbox NetSuite client
func NewSandboxClient(accountID string) *SandboxClient {
	return &SandboxClient{
		customers: make(map[string]model.ContactPayload),
		accountID: accountID,
	}
}

// CreateCustomer fabricates a new NetSuite customer id for the payload.
func (c *SandboxClient) CreateCustomer(ctx context.Context, payload model.ContactPayload) (string, error) {
	if payload.Email == "" {
		return "", fmt.Errorf("netsuite: customer payload has no email")
	}
	id := "NS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	c.mu.Lock()
	c.customers[id] = payload
	c.mu.Unlock()

	logger.FromContext(ctx).Debug("Created sandbox NetSuite customer",
		zap.String("netsuite_id", id),
		zap.String("email", payload.Email),
		zap.String("account_id", c.accountID),
	)
	return id, nil
}

// UpdateCustomer overwrites a sandbox customer. Unknown ids are accepted:
// mappings persist across runs while this in-memory store does not, so an
// update against a persisted mapping must still succeed in a fresh process.
func (c *SandboxClient) UpdateCustomer(ctx context.Context, netsuiteID string, payload model.ContactPayload) error {
	if netsuiteID == "" {
		return fmt.Errorf("netsuite: customer id is required")
	}

	c.mu.Lock()
	c.customers[netsuiteID] = payload
	c.mu.Unlock()

	logger.FromContext(ctx).Debug("Updated sandbox NetSuite customer",
		zap.String("netsuite_id", netsuiteID),
		zap.String("email", payload.Email),
	)
	return nil
}

var _ Client = (*SandboxClient)(nil)
