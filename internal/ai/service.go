package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/casebuddy/casebuddy/internal/cases"
	"github.com/casebuddy/casebuddy/internal/documents"
	"github.com/casebuddy/casebuddy/internal/evidence"
	"github.com/casebuddy/casebuddy/internal/foia"
	"github.com/casebuddy/casebuddy/internal/timeline"
)

// similarityFanout bounds concurrent completion calls when scoring a
// case against the user's other cases.
const similarityFanout = 4

// maxSimilarResults caps the similarity response.
const maxSimilarResults = 5

// maxPromptChars truncates user content before it reaches the
// completion backend.
const maxPromptChars = 25000

// Service runs the completion-backed features. Every method takes the
// requesting user's id and checks entity ownership through the domain
// services before any completion call.
type Service struct {
	completer Completer
	repo      RepositoryPort
	cache     *Cache
	docs      *documents.Service
	evidence  *evidence.Service
	timeline  *timeline.Service
	foia      *foia.Service
	cases     *cases.Service
	logger    *slog.Logger
	group     singleflight.Group
}

// ServiceParams aggregates the service dependencies.
type ServiceParams struct {
	Completer Completer
	Repo      RepositoryPort
	Cache     *Cache
	Documents *documents.Service
	Evidence  *evidence.Service
	Timeline  *timeline.Service
	FOIA      *foia.Service
	Cases     *cases.Service
	Logger    *slog.Logger
}

// NewService builds the AI Service.
func NewService(p ServiceParams) *Service {
	return &Service{
		completer: p.Completer,
		repo:      p.Repo,
		cache:     p.Cache,
		docs:      p.Documents,
		evidence:  p.Evidence,
		timeline:  p.Timeline,
		foia:      p.FOIA,
		cases:     p.Cases,
		logger:    p.Logger,
	}
}

// AnalyzeDocument runs a fresh analysis over one document and persists
// the result. Concurrent requests for the same document share one run.
func (s *Service) AnalyzeDocument(ctx context.Context, documentID, userID string) (*DocumentAnalysis, error) {
	doc, err := s.docs.Get(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do("analyze:"+documentID, func() (interface{}, error) {
		raw, err := s.completer.Complete(ctx, CompletionRequest{
			Task:   TaskDocumentAnalysis,
			System: systemDocumentAnalysis,
			Prompt: fmt.Sprintf("Document name: %s\n\nDocument content:\n%s", doc.Name, truncate(doc.Content)),
		})
		if err != nil {
			return nil, err
		}
		var analysis DocumentAnalysis
		if err := decodePayload(raw, &analysis); err != nil {
			return nil, err
		}
		if analysis.Summary == "" {
			return nil, fmt.Errorf("%w: missing summary", ErrMalformedCompletion)
		}
		analysis.DocumentID = documentID
		analysis.RawAnalysis = raw
		if err := s.repo.InsertDocumentAnalysis(ctx, &analysis); err != nil {
			return nil, err
		}
		return &analysis, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DocumentAnalysis), nil
}

// DocumentAnalysis returns the most recent stored analysis for a
// document the user owns.
func (s *Service) DocumentAnalysis(ctx context.Context, documentID, userID string) (*DocumentAnalysis, error) {
	if _, err := s.docs.Get(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.repo.LatestDocumentAnalysis(ctx, documentID)
}

// ClassifyEvidence classifies one evidence item and persists the
// result.
func (s *Service) ClassifyEvidence(ctx context.Context, evidenceID, userID string) (*EvidenceClassification, error) {
	item, err := s.evidence.Get(ctx, evidenceID, userID)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do("classify:"+evidenceID, func() (interface{}, error) {
		raw, err := s.completer.Complete(ctx, CompletionRequest{
			Task:   TaskEvidenceClassification,
			System: systemEvidenceClassification,
			Prompt: fmt.Sprintf("Evidence name: %s\nFile type: %s\n\nDescription:\n%s",
				item.Name, item.FileType, truncate(item.Description)),
		})
		if err != nil {
			return nil, err
		}
		var cls EvidenceClassification
		if err := decodePayload(raw, &cls); err != nil {
			return nil, err
		}
		if cls.EvidenceType == "" {
			return nil, fmt.Errorf("%w: missing evidenceType", ErrMalformedCompletion)
		}
		cls.EvidenceID = evidenceID
		if err := s.repo.InsertEvidenceClassification(ctx, &cls); err != nil {
			return nil, err
		}
		return &cls, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EvidenceClassification), nil
}

// PredictTimeline forecasts likely future events from the case
// chronology and persists the analysis.
func (s *Service) PredictTimeline(ctx context.Context, caseID, userID string) (*TimelineAnalysis, error) {
	c, err := s.cases.Get(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.timeline.ListByCase(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do("predict:"+caseID, func() (interface{}, error) {
		var chronology strings.Builder
		for _, ev := range events {
			fmt.Fprintf(&chronology, "- %s: %s (%s)\n", ev.EventDate.Format("2006-01-02"), ev.Title, ev.Description)
		}
		raw, err := s.completer.Complete(ctx, CompletionRequest{
			Task:   TaskTimelinePrediction,
			System: systemTimelinePrediction,
			Prompt: fmt.Sprintf("Case: %s\nStatus: %s\nDescription: %s\n\nRecorded timeline:\n%s",
				c.Title, c.Status, truncate(c.Description), chronology.String()),
		})
		if err != nil {
			return nil, err
		}
		var analysis TimelineAnalysis
		if err := decodePayload(raw, &analysis); err != nil {
			return nil, err
		}
		if len(analysis.Events) == 0 {
			return nil, fmt.Errorf("%w: no predicted events", ErrMalformedCompletion)
		}
		analysis.CaseID = caseID
		if err := s.repo.InsertTimelineAnalysis(ctx, &analysis); err != nil {
			return nil, err
		}
		return &analysis, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TimelineAnalysis), nil
}

// OptimizeFOIA rewrites a FOIA draft for a better chance of success.
// The result is advisory and cached rather than persisted.
func (s *Service) OptimizeFOIA(ctx context.Context, foiaID, userID string) (*FOIAOptimization, error) {
	req, err := s.foia.Get(ctx, foiaID, userID)
	if err != nil {
		return nil, err
	}

	var opt FOIAOptimization
	err = s.cache.FetchJSON(ctx, cacheKey(TaskFOIAOptimization, foiaID), &opt, func(ctx context.Context) (interface{}, error) {
		raw, err := s.completer.Complete(ctx, CompletionRequest{
			Task:   TaskFOIAOptimization,
			System: systemFOIAOptimization,
			Prompt: fmt.Sprintf("Agency: %s\nSubject: %s\n\nDraft request:\n%s",
				req.Agency, req.Subject, truncate(req.Body)),
		})
		if err != nil {
			return nil, err
		}
		var out FOIAOptimization
		if err := decodePayload(raw, &out); err != nil {
			return nil, err
		}
		if out.OptimizedRequest == "" {
			return nil, fmt.Errorf("%w: missing optimizedRequest", ErrMalformedCompletion)
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

// Research generates legal research queries for an issue, synthesizes
// the findings, and persists both.
func (s *Service) Research(ctx context.Context, caseID, userID, issue string) (*ResearchResult, error) {
	c, err := s.cases.Get(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}

	raw, err := s.completer.Complete(ctx, CompletionRequest{
		Task:   TaskLegalResearch,
		System: systemLegalResearch,
		Prompt: fmt.Sprintf("Case description: %s\n\nLegal issue: %s", truncate(c.Description), issue),
	})
	if err != nil {
		return nil, err
	}
	var res ResearchResult
	if err := decodePayload(raw, &res); err != nil {
		return nil, err
	}
	if res.Summary == "" || len(res.Queries) == 0 {
		return nil, fmt.Errorf("%w: missing summary or queries", ErrMalformedCompletion)
	}
	res.CaseID = caseID
	res.Issue = issue
	if err := s.repo.InsertResearch(ctx, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SimilarCases scores the user's other cases against the target case
// and returns the closest matches, highest score first.
func (s *Service) SimilarCases(ctx context.Context, caseID, userID string) ([]SimilarCase, error) {
	target, err := s.cases.Get(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.cases.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []SimilarCase
	err = s.cache.FetchJSON(ctx, cacheKey(TaskCaseSimilarity, caseID), &out, func(ctx context.Context) (interface{}, error) {
		var (
			mu      sync.Mutex
			results []SimilarCase
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(similarityFanout)
		for _, candidate := range all {
			if candidate.ID == caseID {
				continue
			}
			candidate := candidate
			g.Go(func() error {
				score, err := s.scoreSimilarity(gctx, target, &candidate)
				if err != nil {
					return err
				}
				mu.Lock()
				results = append(results, *score)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		sort.Slice(results, func(i, j int) bool {
			return results[i].SimilarityScore > results[j].SimilarityScore
		})
		if len(results) > maxSimilarResults {
			results = results[:maxSimilarResults]
		}
		if results == nil {
			results = []SimilarCase{}
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []SimilarCase{}
	}
	return out, nil
}

func (s *Service) scoreSimilarity(ctx context.Context, target, candidate *cases.Case) (*SimilarCase, error) {
	raw, err := s.completer.Complete(ctx, CompletionRequest{
		Task:   TaskCaseSimilarity,
		System: systemCaseSimilarity,
		Prompt: fmt.Sprintf("Target case: %s\n%s\n\nCandidate case: %s\n%s",
			target.Title, truncate(target.Description),
			candidate.Title, truncate(candidate.Description)),
	})
	if err != nil {
		return nil, err
	}
	var score struct {
		SimilarityScore int      `json:"similarityScore"`
		KeyFactors      []string `json:"keyFactors"`
	}
	if err := decodePayload(raw, &score); err != nil {
		return nil, err
	}
	return &SimilarCase{
		ID:              candidate.ID,
		Title:           candidate.Title,
		Description:     candidate.Description,
		SimilarityScore: score.SimilarityScore,
		KeyFactors:      score.KeyFactors,
	}, nil
}

// decodePayload extracts the JSON object from a completion and decodes
// it. Completions sometimes wrap the object in prose; everything
// outside the outermost braces is ignored.
func decodePayload(raw string, dest any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object in completion", ErrMalformedCompletion)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}
	return nil
}

// truncate bounds user content before it reaches the completion
// backend, backing off to a rune boundary so the cut never produces an
// invalid UTF-8 tail.
func truncate(s string) string {
	if len(s) <= maxPromptChars {
		return s
	}
	cut := maxPromptChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

const (
	systemDocumentAnalysis = `You are a legal document analyst. Respond with a JSON object:
{"summary": string, "entities": {"people": [string], "organizations": [string], "locations": [string]}, "dates": [string], "legalIssues": [string], "risks": [string]}`

	systemEvidenceClassification = `You classify legal evidence. Respond with a JSON object:
{"evidenceType": string, "relevanceScore": number 0-100, "tags": [string], "sensitivity": string, "description": string}`

	systemTimelinePrediction = `You forecast legal case timelines. Respond with a JSON object:
{"events": [{"event": string, "date": "YYYY-MM-DD", "confidence": number 0-100, "explanation": string}], "insights": [string], "gaps": [string], "criticalPeriods": [string], "suggestions": [string]}`

	systemFOIAOptimization = `You improve Freedom of Information Act requests. Respond with a JSON object:
{"optimizedRequest": string, "explanation": string, "keyImprovements": [string]}`

	systemLegalResearch = `You are a legal research assistant. Respond with a JSON object:
{"queries": [string], "summary": string, "precedents": [string], "statutes": [string], "principles": [string], "application": string}`

	systemCaseSimilarity = `You score how similar two legal cases are. Respond with a JSON object:
{"similarityScore": number 0-100, "keyFactors": [string]}`
)
