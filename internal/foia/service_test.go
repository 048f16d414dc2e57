package foia

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebuddy/casebuddy/internal/shared"
)

func TestCanonicalAgency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"department of justice", "Department Of Justice"},
		{"  department of justice  ", "Department Of Justice"},
		{"FBI", "FBI"},
		{"U.S. Department of State", "U.S. Department of State"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalAgency(tt.in), "input %q", tt.in)
	}
}

type recordingRepo struct {
	created CreateParams
	updated UpdateParams
}

func (r *recordingRepo) ListByCase(context.Context, string, string) ([]Request, error) {
	return nil, nil
}
func (r *recordingRepo) Get(context.Context, string, string) (*Request, error) {
	return nil, shared.ErrNotFound
}
func (r *recordingRepo) Create(_ context.Context, _ string, params CreateParams) (*Request, error) {
	r.created = params
	return &Request{ID: "f1", Agency: params.Agency, Status: StatusDraft}, nil
}
func (r *recordingRepo) Update(_ context.Context, _, _ string, params UpdateParams) (*Request, error) {
	r.updated = params
	return &Request{ID: "f1", Agency: params.Agency, Status: params.Status}, nil
}
func (r *recordingRepo) Delete(context.Context, string, string) error { return nil }

var _ RepositoryPort = (*recordingRepo)(nil)

func TestCreateCanonicalizesAgency(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewService(repo, nil, nil)

	req, err := svc.Create(context.Background(), "user-1", CreateParams{
		CaseID:  "case-1",
		Agency:  "department of records",
		Subject: "Contracts",
	})
	require.NoError(t, err)
	assert.Equal(t, "Department Of Records", req.Agency)
	assert.Equal(t, "Department Of Records", repo.created.Agency)
}

func TestUpdateDefaultsStatusToDraft(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewService(repo, nil, nil)

	req, err := svc.Update(context.Background(), "f1", "user-1", UpdateParams{
		Agency:  "FBI",
		Subject: "Records",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, req.Status)
	assert.Equal(t, "FBI", req.Agency)

	req, err = svc.Update(context.Background(), "f1", "user-1", UpdateParams{
		Agency: "FBI",
		Status: StatusSubmitted,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, req.Status)
}

func TestTemplateForCategory(t *testing.T) {
	tpl := TemplateForCategory("immigration records")

	assert.Equal(t, "Immigration Records", tpl.Category)
	assert.Equal(t, "FOIA Request: [Specific Information] from Immigration Records", tpl.SubjectTemplate)
	assert.Contains(t, tpl.BodyTemplate, "under the Freedom of Information Act")
	assert.Contains(t, tpl.BodyTemplate, "related to Immigration Records")
	assert.NotEmpty(t, tpl.SuggestedAttachments)
	assert.NotEmpty(t, tpl.RecommendedAgencies)
	assert.NotEmpty(t, tpl.Tips)
}

type auditSpy struct {
	logs []shared.AuditLog
}

func (a *auditSpy) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestUpdateRecordsAudit(t *testing.T) {
	repo := &recordingRepo{}
	audit := &auditSpy{}
	svc := NewService(repo, audit, nil)

	_, err := svc.Update(context.Background(), "f1", "user-1", UpdateParams{
		Agency: "FBI",
		Status: StatusSubmitted,
	})
	require.NoError(t, err)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "foia.update", audit.logs[0].Action)
	assert.Equal(t, "user-1", audit.logs[0].ActorID)
	assert.Equal(t, "f1", audit.logs[0].EntityID)
}
