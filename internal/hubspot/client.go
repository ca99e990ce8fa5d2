// Package hubspot holds the HubSpot-facing surface of the migration. Only
// sandbox portals are ever read from this utility, so the sandbox client is
// the working implementation rather than a test double.
package hubspot

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
)

// Client is the HubSpot read surface used by migration runs.
type Client interface {
	FetchContacts(ctx context.Context) ([]model.ContactPayload, error)
	FetchCompanies(ctx context.Context) ([]model.CompanyPayload, error)
	FetchDeals(ctx context.Context) ([]model.DealPayload, error)
}

// Fixed seed keeps sandbox pulls reproducible across runs.
const sandboxSeed = 42

// SandboxClient simulates a HubSpot sandbox portal with a deterministic set
// of records.
type SandboxClient struct {
	batchSize int
}

// NewSandboxClient creates a new sandbox HubSpot client. batchSize caps how
// many records a single pull returns.
func NewSandboxClient(batchSize int) *SandboxClient {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &SandboxClient{batchSize: batchSize}
}

// FetchContacts returns the sandbox portal's contact records.
func (c *SandboxClient) FetchContacts(ctx context.Context) ([]model.ContactPayload, error) {
	faker := gofakeit.New(sandboxSeed)
	contacts := make([]model.ContactPayload, 0, c.batchSize)
	for i := 0; i < c.batchSize; i++ {
		first := faker.FirstName()
		last := faker.LastName()
		contacts = append(contacts, model.ContactPayload{
			HubspotID:      fmt.Sprintf("hs-%04d", 1000+i),
			FirstName:      first,
			LastName:       last,
			Email:          fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			Phone:          faker.Phone(),
			Company:        faker.Company(),
			LifecycleStage: "Lead",
			City:           faker.City(),
			State:          faker.StateAbr(),
			Zip:            faker.Zip(),
			Country:        "US",
		})
	}
	logger.FromContext(ctx).Info("Fetched sandbox HubSpot contacts", zap.Int("count", len(contacts)))
	return contacts, nil
}

// FetchCompanies returns the sandbox portal's company records.
func (c *SandboxClient) FetchCompanies(ctx context.Context) ([]model.CompanyPayload, error) {
	faker := gofakeit.New(sandboxSeed)
	companies := make([]model.CompanyPayload, 0, c.batchSize)
	for i := 0; i < c.batchSize; i++ {
		name := faker.Company()
		companies = append(companies, model.CompanyPayload{
			HubspotID: fmt.Sprintf("hs-co-%04d", 1000+i),
			Name:      name,
			Domain:    faker.DomainName(),
		})
	}
	logger.FromContext(ctx).Info("Fetched sandbox HubSpot companies", zap.Int("count", len(companies)))
	return companies, nil
}

// FetchDeals returns the sandbox portal's deal records.
func (c *SandboxClient) FetchDeals(ctx context.Context) ([]model.DealPayload, error) {
	faker := gofakeit.New(sandboxSeed)
	deals := make([]model.DealPayload, 0, c.batchSize)
	for i := 0; i < c.batchSize; i++ {
		deals = append(deals, model.DealPayload{
			HubspotID: fmt.Sprintf("hs-deal-%04d", 1000+i),
			Title:     faker.BuzzWord() + " deal",
			Amount:    faker.Price(500, 50000),
			Stage:     "qualification",
		})
	}
	logger.FromContext(ctx).Info("Fetched sandbox HubSpot deals", zap.Int("count", len(deals)))
	return deals, nil
}

var _ Client = (*SandboxClient)(nil)
