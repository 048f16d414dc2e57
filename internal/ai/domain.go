// Package ai wraps an external text-completion service with structured,
// persisted results for document analysis, evidence classification,
// timeline prediction, FOIA drafting help, legal research, and case
// similarity scoring.
package ai

import "time"

// Entities groups the named entities extracted from a document.
type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// DocumentAnalysis is the structured result of analyzing one document.
type DocumentAnalysis struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	Summary     string    `json:"summary"`
	Entities    Entities  `json:"entities"`
	Dates       []string  `json:"dates"`
	LegalIssues []string  `json:"legalIssues"`
	Risks       []string  `json:"risks"`
	RawAnalysis string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EvidenceClassification is the structured result of classifying one
// evidence item.
type EvidenceClassification struct {
	ID             string    `json:"id"`
	EvidenceID     string    `json:"evidenceId"`
	EvidenceType   string    `json:"evidenceType"`
	RelevanceScore int       `json:"relevanceScore"`
	Tags           []string  `json:"tags"`
	Sensitivity    string    `json:"sensitivity"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PredictedEvent is a single forecast entry in a timeline prediction.
type PredictedEvent struct {
	Event       string `json:"event"`
	Date        string `json:"date"`
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}

// TimelineAnalysis is the structured result of a timeline prediction
// run over a case chronology.
type TimelineAnalysis struct {
	ID              string           `json:"id"`
	CaseID          string           `json:"caseId"`
	Events          []PredictedEvent `json:"events"`
	Insights        []string         `json:"insights"`
	Gaps            []string         `json:"gaps"`
	CriticalPeriods []string         `json:"criticalPeriods"`
	Suggestions     []string         `json:"suggestions"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// FOIAOptimization is the rewritten request returned by the optimizer.
// It is advisory output and is not persisted.
type FOIAOptimization struct {
	OptimizedRequest string   `json:"optimizedRequest"`
	Explanation      string   `json:"explanation"`
	KeyImprovements  []string `json:"keyImprovements"`
}

// ResearchResult is the persisted outcome of a legal research run:
// generated queries plus the synthesized summary.
type ResearchResult struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Issue       string    `json:"issue"`
	Queries     []string  `json:"queries"`
	Summary     string    `json:"summary"`
	Precedents  []string  `json:"precedents"`
	Statutes    []string  `json:"statutes"`
	Principles  []string  `json:"principles"`
	Application string    `json:"application"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SimilarCase scores one of the user's other cases against a target.
type SimilarCase struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	SimilarityScore int      `json:"similarityScore"`
	KeyFactors      []string `json:"keyFactors"`
}
