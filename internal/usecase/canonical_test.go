package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

func TestCanonicalCustomer_Defaults(t *testing.T) {
	payload := model.ContactPayload{
		HubspotID: "hs-1001",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada.Lovelace@Example.COM",
	}

	customer := canonicalCustomer(payload, model.SystemHubspot, tenant.EnvSandbox)

	assert.Equal(t, "ada.lovelace@example.com", customer.Email)
	assert.Equal(t, "Lead", customer.LifecycleStage)
	assert.Equal(t, "Lead", customer.PipelineStage)
	assert.Equal(t, "Retail", customer.CustomerType)
	assert.Equal(t, model.SystemHubspot, customer.SourceSystem)
	assert.Equal(t, tenant.EnvSandbox, customer.Environment)
	assert.Empty(t, customer.ID)
}

func TestCanonicalCustomer_ExplicitStagesKept(t *testing.T) {
	payload := model.ContactPayload{
		Email:          "grace@example.com",
		LifecycleStage: "Customer",
		PipelineStage:  "Closed Won",
		CustomerType:   "Wholesale",
	}

	customer := canonicalCustomer(payload, model.SystemHubspot, tenant.EnvLive)

	assert.Equal(t, "Customer", customer.LifecycleStage)
	assert.Equal(t, "Closed Won", customer.PipelineStage)
	assert.Equal(t, "Wholesale", customer.CustomerType)
}

func TestCanonicalCustomer_SourceDataSnapshot(t *testing.T) {
	payload := model.ContactPayload{
		HubspotID: "hs-1001",
		Email:     "ada@example.com",
		Company:   "Analytical Engines Ltd",
	}

	customer := canonicalCustomer(payload, model.SystemHubspot, tenant.EnvSandbox)

	var snapshot model.ContactPayload
	require.NoError(t, utils.UnmarshalJSON(customer.SourceData, &snapshot))
	assert.Equal(t, payload.HubspotID, snapshot.HubspotID)
	assert.Equal(t, payload.Company, snapshot.Company)
}

func TestCanonicalCustomer_TrimsWhitespace(t *testing.T) {
	payload := model.ContactPayload{
		FirstName: "  Ada ",
		Email:     " ada@example.com ",
	}

	customer := canonicalCustomer(payload, model.SystemHubspot, tenant.EnvSandbox)

	assert.Equal(t, "Ada", customer.FirstName)
	assert.Equal(t, "ada@example.com", customer.Email)
}
