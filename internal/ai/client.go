package ai

import (
	"context"
	"errors"
)

// TaskKind routes a completion request to the right prompt and result
// schema.
type TaskKind string

const (
	TaskDocumentAnalysis       TaskKind = "document_analysis"
	TaskEvidenceClassification TaskKind = "evidence_classification"
	TaskTimelinePrediction     TaskKind = "timeline_prediction"
	TaskFOIAOptimization       TaskKind = "foia_optimization"
	TaskLegalResearch          TaskKind = "legal_research"
	TaskCaseSimilarity         TaskKind = "case_similarity"
)

// CompletionRequest is one call to the completion backend.
type CompletionRequest struct {
	Task   TaskKind
	System string
	Prompt string
}

// Completer is the port to the text-completion backend. Implementations
// return the raw completion text; parsing into result schemas happens
// in the service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrMalformedCompletion marks a completion that came back but did not
// match the expected result schema. It is recoverable: the caller can
// retry, and handlers map it to 502 rather than a generic 500.
var ErrMalformedCompletion = errors.New("ai: malformed completion payload")
