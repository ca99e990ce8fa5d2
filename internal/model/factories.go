package model

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

// NewContactPayload creates a ContactPayload with default fake data.
// Pass a partial payload to override individual fields.
func NewContactPayload(overrideDefaults ...*ContactPayload) *ContactPayload {
	base := &ContactPayload{
		HubspotID:      gofakeit.DigitN(6),
		FirstName:      gofakeit.FirstName(),
		LastName:       gofakeit.LastName(),
		Email:          gofakeit.Email(),
		Phone:          gofakeit.Phone(),
		Company:        gofakeit.Company(),
		Brand:          gofakeit.RandomString([]string{"FWD Retail", "FWD Direct", "FWD Pro"}),
		LifecycleStage: gofakeit.RandomString([]string{"Lead", "Customer", "Opportunity"}),
		PipelineStage:  gofakeit.RandomString([]string{"Lead", "Negotiation", "Closed Won"}),
		CustomerType:   gofakeit.RandomString([]string{"Retail", "Wholesale"}),
		Address:        gofakeit.Street(),
		City:           gofakeit.City(),
		State:          gofakeit.StateAbr(),
		Zip:            gofakeit.Zip(),
		Country:        "US",
		Notes:          gofakeit.Sentence(6),
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.HubspotID != "" {
			base.HubspotID = ovr.HubspotID
		}
		if ovr.NetsuiteID != "" {
			base.NetsuiteID = ovr.NetsuiteID
		}
		if ovr.FirstName != "" {
			base.FirstName = ovr.FirstName
		}
		if ovr.LastName != "" {
			base.LastName = ovr.LastName
		}
		if ovr.Email != "" {
			base.Email = ovr.Email
		}
		if ovr.Phone != "" {
			base.Phone = ovr.Phone
		}
		if ovr.Company != "" {
			base.Company = ovr.Company
		}
		if ovr.Brand != "" {
			base.Brand = ovr.Brand
		}
		if ovr.LifecycleStage != "" {
			base.LifecycleStage = ovr.LifecycleStage
		}
		if ovr.PipelineStage != "" {
			base.PipelineStage = ovr.PipelineStage
		}
		if ovr.CustomerType != "" {
			base.CustomerType = ovr.CustomerType
		}
		if ovr.Notes != "" {
			base.Notes = ovr.Notes
		}
	}

	return base
}

// NewCustomer creates a Customer with default fake data scoped to the given
// environment.
func NewCustomer(environment string, overrideDefaults ...*Customer) *Customer {
	base := &Customer{
		ID:             "CUST-" + gofakeit.UUID(),
		HubspotID:      gofakeit.DigitN(6),
		SourceSystem:   SystemHubspot,
		FirstName:      gofakeit.FirstName(),
		LastName:       gofakeit.LastName(),
		Email:          gofakeit.Email(),
		Phone:          gofakeit.Phone(),
		Company:        gofakeit.Company(),
		LifecycleStage: "Lead",
		PipelineStage:  "Lead",
		CustomerType:   "Retail",
		CreatedAt:      utils.Now(),
		LastSyncedAt:   utils.Now(),
		Environment:    environment,
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.ID != "" {
			base.ID = ovr.ID
		}
		if ovr.Email != "" {
			base.Email = ovr.Email
		}
		if ovr.HubspotID != "" {
			base.HubspotID = ovr.HubspotID
		}
		if ovr.NetsuiteID != "" {
			base.NetsuiteID = ovr.NetsuiteID
		}
		if ovr.FirstName != "" {
			base.FirstName = ovr.FirstName
		}
		if ovr.LastName != "" {
			base.LastName = ovr.LastName
		}
	}

	return base
}

// NewCompanyPayload creates a CompanyPayload with default fake data.
func NewCompanyPayload() *CompanyPayload {
	return &CompanyPayload{
		HubspotID: gofakeit.DigitN(6),
		Name:      gofakeit.Company(),
		Domain:    gofakeit.DomainName(),
	}
}

// NewDealPayload creates a DealPayload with default fake data.
func NewDealPayload() *DealPayload {
	return &DealPayload{
		HubspotID: gofakeit.DigitN(6),
		Title:     gofakeit.BuzzWord() + " deal",
		Amount:    gofakeit.Price(500, 50000),
		Stage:     gofakeit.RandomString([]string{"Lead", "Negotiation", "Closed Won"}),
	}
}
