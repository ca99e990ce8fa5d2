package usecase

import (
	"strings"

	"gorm.io/datatypes"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// Stage defaults applied when the source record leaves them blank.
const (
	defaultLifecycleStage = "Lead"
	defaultPipelineStage  = "Lead"
	defaultCustomerType   = "Retail"
)

// canonicalCustomer maps a raw source payload onto the canonical customer
// shape. The email is lowercased so natural-key matching is case insensitive;
// blank stage fields fall back to their defaults. The raw payload is kept as
// a JSON snapshot in SourceData.
func canonicalCustomer(payload model.ContactPayload, source, environment string) model.Customer {
	customer := model.Customer{
		HubspotID:      payload.HubspotID,
		NetsuiteID:     payload.NetsuiteID,
		SourceSystem:   source,
		FirstName:      strings.TrimSpace(payload.FirstName),
		LastName:       strings.TrimSpace(payload.LastName),
		Email:          strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:          strings.TrimSpace(payload.Phone),
		Company:        strings.TrimSpace(payload.Company),
		Brand:          strings.TrimSpace(payload.Brand),
		LifecycleStage: payload.LifecycleStage,
		PipelineStage:  payload.PipelineStage,
		CustomerType:   payload.CustomerType,
		Address:        payload.Address,
		City:           payload.City,
		State:          payload.State,
		Zip:            payload.Zip,
		Country:        payload.Country,
		Notes:          payload.Notes,
		SourceData:     datatypes.JSON(utils.MustMarshalJSON(payload)),
		Environment:    environment,
	}
	if customer.LifecycleStage == "" {
		customer.LifecycleStage = defaultLifecycleStage
	}
	if customer.PipelineStage == "" {
		customer.PipelineStage = defaultPipelineStage
	}
	if customer.CustomerType == "" {
		customer.CustomerType = defaultCustomerType
	}
	return customer
}
