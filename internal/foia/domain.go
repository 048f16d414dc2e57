// Package foia manages Freedom of Information Act request drafts tied
// to a case.
package foia

import "time"

// Request statuses follow the drafting lifecycle.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusFulfilled = "fulfilled"
	StatusDenied    = "denied"
)

// Request is a FOIA request draft attached to a case.
type Request struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"caseId"`
	Agency    string    `json:"agency"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Template is a starting point for drafting a request in a records
// category. Placeholders in square brackets are filled in by the user.
type Template struct {
	Category             string   `json:"category"`
	SubjectTemplate      string   `json:"subjectTemplate"`
	BodyTemplate         string   `json:"bodyTemplate"`
	SuggestedAttachments []string `json:"suggestedAttachments"`
	RecommendedAgencies  []string `json:"recommendedAgencies"`
	Tips                 []string `json:"tips"`
}
