package model

import (
	"time"
)

// ContactPayload is a loosely-typed contact record as fetched from the
// source CRM or parsed from a CSV row. Field names mirror HubSpot property
// names; everything except the email may be absent.
type ContactPayload struct {
	HubspotID      string `json:"hubspot_id,omitempty"`
	NetsuiteID     string `json:"netsuite_id,omitempty"`
	FirstName      string `json:"firstname,omitempty"`
	LastName       string `json:"lastname,omitempty"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	Brand          string `json:"brand,omitempty"`
	LifecycleStage string `json:"lifecycle_stage,omitempty"`
	PipelineStage  string `json:"pipeline_stage,omitempty"`
	CustomerType   string `json:"customer_type,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Zip            string `json:"zip,omitempty"`
	Country        string `json:"country,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// CompanyPayload is a company record as returned by the source CRM.
type CompanyPayload struct {
	HubspotID string `json:"hubspot_id,omitempty"`
	Name      string `json:"name" validate:"required"`
	Domain    string `json:"domain,omitempty"`
}

// DealPayload is a deal record as returned by the source CRM.
type DealPayload struct {
	HubspotID string  `json:"hubspot_id,omitempty"`
	Title     string  `json:"title" validate:"required"`
	Amount    float64 `json:"amount,omitempty"`
	Stage     string  `json:"stage,omitempty"`
}

// ResolveResult reports the outcome of resolving one record against the
// identity store: the durable customer id and whether the write was a create
// or an update.
type ResolveResult struct {
	ID     string `json:"id"`
	Action string `json:"action"` // ActionCreate or ActionUpdate
}

// RecordError identifies a single failed record within a batch run.
type RecordError struct {
	Email   string `json:"email"`
	Message string `json:"error"`
}

// Summary aggregates the outcome of a batch run. Exactly one of
// created/updated/failed is incremented per input record.
type Summary struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  int           `json:"failed"`
	Errors  []RecordError `json:"errors"`
}

// Total returns the number of records the summary accounts for.
func (s Summary) Total() int {
	return s.Created + s.Updated + s.Failed
}

// AddError records a failed record in the summary.
func (s *Summary) AddError(email, message string) {
	s.Failed++
	s.Errors = append(s.Errors, RecordError{Email: email, Message: message})
}

// RunSummaryEvent is published to JetStream after a non-dry batch run so
// downstream consumers (dashboards, alerting) can react to migration results.
type RunSummaryEvent struct {
	RunID       string    `json:"run_id"`
	Stage       string    `json:"stage"` // "migrate" or "push"
	Source      string    `json:"source"`
	Target      string    `json:"target"`
	Environment string    `json:"environment"`
	Summary     Summary   `json:"summary"`
	CompletedAt time.Time `json:"completed_at"`
}
