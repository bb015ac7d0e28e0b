package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/internal/intelligence/common"
	"github.com/turtacn/ClauseWise/internal/intelligence/huggingface"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const sampleNDA = `MUTUAL NON-DISCLOSURE AGREEMENT

This Agreement is entered into between Acme Corporation ("Company") and John Smith ("Recipient") on January 15, 2024.

WHEREAS, Company possesses certain confidential information; and

NOW, THEREFORE, in consideration of the mutual covenants contained herein, the parties agree as follows:

1. CONFIDENTIAL INFORMATION. "Confidential Information" means any information disclosed by Company to Recipient, whether orally or in writing, that is designated as confidential.

2. NON-DISCLOSURE. Recipient agrees not to use any Confidential Information for any purpose except to evaluate a possible business relationship with Company.

3. TERM. This Agreement shall remain in effect for a period of two (2) years from the date of this Agreement.

IN WITNESS WHEREOF, the parties have executed this Agreement as of the date first written above.`

// stubCollaborator fails every call with err (when set) and counts calls.
type stubCollaborator struct {
	err        error
	summarize  error
	simplify   int32
	classify   int32
	extract    int32
	summarizeN int32
}

func (s *stubCollaborator) Name() string { return "stub" }

func (s *stubCollaborator) Classify(context.Context, string) (legal.Classification, error) {
	atomic.AddInt32(&s.classify, 1)
	if s.err != nil {
		return legal.Classification{}, s.err
	}
	return legal.NewClassification(legal.DocumentLease, 0.9), nil
}

func (s *stubCollaborator) Simplify(context.Context, string) (string, error) {
	atomic.AddInt32(&s.simplify, 1)
	if s.err != nil {
		return "", s.err
	}
	return "plain words", nil
}

func (s *stubCollaborator) ExtractEntities(context.Context, string) ([]legal.Entity, error) {
	atomic.AddInt32(&s.extract, 1)
	if s.err != nil {
		return nil, s.err
	}
	return []legal.Entity{{Text: "Acme", Kind: legal.EntityOrganization, Confidence: 0.8}}, nil
}

func (s *stubCollaborator) Summarize(context.Context, string) (string, error) {
	atomic.AddInt32(&s.summarizeN, 1)
	if s.summarize != nil {
		return "", s.summarize
	}
	if s.err != nil {
		return "", s.err
	}
	return "remote summary", nil
}

func newLocalService() Service {
	return NewService(DefaultEngine(), nil, nil, nil, Config{})
}

func nda() legal.Document {
	return legal.NewDocument("nda.txt", sampleNDA)
}

// ─────────────────────────────────────────────────────────────────────────────
// Local-only analysis
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_LocalSampleNDA(t *testing.T) {
	svc := newLocalService()
	doc := nda()

	report, err := svc.Analyze(context.Background(), doc, Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, doc.ID, report.DocumentID)
	assert.Equal(t, "nda.txt", report.Filename)
	assert.Equal(t, legal.DocumentNDA, report.DocumentType.Type)
	assert.Greater(t, report.DocumentType.Confidence, 0.0)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.Simplified)
	assert.NotEmpty(t, report.Entities)
	assert.Greater(t, report.Stats.WordCount, 0)
	assert.Empty(t, report.Warnings)
	assert.False(t, report.CreatedAt.IsZero())

	require.Len(t, report.Clauses, 7)
	for i, c := range report.Clauses {
		assert.Equal(t, i+1, c.Clause.Index)
		assert.NotEmpty(t, c.Simplified)
		assert.NotEmpty(t, c.KeyPoints)
	}
	assert.Equal(t, legal.ClauseConfidentiality, report.Clauses[3].Clause.Type)

	for _, step := range []string{StepClassification, StepSummary, StepClauses, StepSimplified, StepEntities} {
		assert.Equal(t, legal.SourceLocal, report.Sources[step], step)
	}
}

func TestAnalyze_ClauseLimit(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, Config{ClauseLimit: 2})

	report, err := svc.Analyze(context.Background(), nda(), Options{})
	require.NoError(t, err)
	assert.Len(t, report.Clauses, 2)

	report, err = svc.Analyze(context.Background(), nda(), Options{ClauseLimit: 4})
	require.NoError(t, err)
	assert.Len(t, report.Clauses, 4)
}

func TestAnalyze_BlankInput(t *testing.T) {
	svc := newLocalService()
	for _, text := range []string{"", "   ", "\n\t\n"} {
		_, err := svc.Analyze(context.Background(), legal.NewDocument("x.txt", text), Options{})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInputError))
	}

	blank := legal.NewDocument("x.txt", " ")
	res := svc.Summarize(context.Background(), blank)
	assert.False(t, res.Success)
	require.NotNil(t, res.Failure)
	assert.Equal(t, errors.ErrCodeInputError, res.Failure.Code)
	assert.False(t, svc.Classify(context.Background(), blank).Success)
	assert.False(t, svc.SimplifyDocument(context.Background(), blank).Success)
	assert.False(t, svc.ExtractEntities(context.Background(), blank).Success)
	assert.False(t, svc.AnalyzeClauses(context.Background(), blank, 5).Success)
}

func TestAnalyzeClauses_DefaultLimit(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, Config{ExtractionClauseLimit: 3})
	res := svc.AnalyzeClauses(context.Background(), nda(), 0)
	require.True(t, res.Success)
	assert.Len(t, res.Value, 3)
	assert.Equal(t, legal.SourceLocal, res.Source)
}

func TestLocalAccessors(t *testing.T) {
	svc := newLocalService()

	clauses := svc.Segment(sampleNDA)
	assert.Len(t, clauses, 7)
	assert.Empty(t, svc.Segment(""))

	assert.Equal(t, legal.ClausePayment, svc.ClassifyClause("The fee is due monthly."))
	assert.Equal(t, legal.ClauseGeneral, svc.ClassifyClause(""))
	assert.Equal(t, "according to the plan", svc.SimplifyClause("pursuant to the plan"))
	assert.Equal(t, 3, svc.Stats("one two three").WordCount)
	assert.Equal(t, legal.ClauseTermination, svc.ClauseStructure("Either party may terminate this agreement.").ClauseType)
	assert.Equal(t, "", svc.Collaborator())
}

// ─────────────────────────────────────────────────────────────────────────────
// Remote collaborator and fallback
// ─────────────────────────────────────────────────────────────────────────────

func TestRemoteSuccess(t *testing.T) {
	stub := &stubCollaborator{}
	svc := NewService(nil, stub, nil, nil, Config{})
	ctx := context.Background()

	cls := svc.Classify(ctx, nda())
	require.True(t, cls.Success)
	assert.Equal(t, legal.DocumentLease, cls.Value.Type)
	assert.Equal(t, legal.RemoteSource("stub"), cls.Source)
	assert.Empty(t, cls.Warnings)

	sum := svc.Summarize(ctx, nda())
	assert.Equal(t, "remote summary", sum.Value)

	clauses := svc.AnalyzeClauses(ctx, nda(), 10)
	require.True(t, clauses.Success)
	assert.Len(t, clauses.Value, 7)
	assert.Equal(t, legal.RemoteSource("stub"), clauses.Source)
	for _, c := range clauses.Value {
		assert.Equal(t, "plain words", c.Simplified)
	}
	assert.Equal(t, "stub", svc.Collaborator())
}

func TestAnalyzeClauses_StopsAfterFirstRemoteFailure(t *testing.T) {
	stub := &stubCollaborator{err: errors.Unavailable("stub", nil)}
	svc := NewService(nil, stub, nil, nil, Config{})

	res := svc.AnalyzeClauses(context.Background(), nda(), 10)
	require.True(t, res.Success)
	assert.Len(t, res.Value, 7)
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.simplify))
	assert.Equal(t, legal.SourceLocal, res.Source)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "COLLABORATOR_UNAVAILABLE")
	for _, c := range res.Value {
		assert.NotEmpty(t, c.Simplified)
	}
}

func TestUnsupportedOperationFallsBackSilently(t *testing.T) {
	stub := &stubCollaborator{summarize: common.Unsupported("stub", common.OpSummarize)}
	svc := NewService(nil, stub, nil, nil, Config{})

	res := svc.Summarize(context.Background(), nda())
	require.True(t, res.Success)
	assert.Equal(t, legal.SourceLocal, res.Source)
	assert.Empty(t, res.Warnings)
	assert.NotEmpty(t, res.Value)
}

func TestFallback_HTTPCollaborator(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, "COLLABORATOR_UNAVAILABLE"},
		{"empty body", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}, "MALFORMED_COLLABORATOR_RESPONSE"},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}, "COLLABORATOR_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			defer srv.Close()

			client := huggingface.NewClient(huggingface.Config{
				BaseURL:         srv.URL,
				APIKey:          "test",
				Model:           "m",
				Timeout:         50 * time.Millisecond,
				GenerateTimeout: 50 * time.Millisecond,
			}, nil, nil)
			svc := NewService(nil, client, nil, nil, Config{})

			report, err := svc.Analyze(context.Background(), nda(), Options{})
			require.NoError(t, err)
			assert.Equal(t, legal.DocumentNDA, report.DocumentType.Type)
			assert.Len(t, report.Clauses, 7)
			assert.NotEmpty(t, report.Summary)

			// classify, summarize, one clause, simplify and extract
			assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
			require.Len(t, report.Warnings, 5)
			for _, w := range report.Warnings {
				assert.True(t, strings.Contains(w, tt.reason), w)
			}
			for step, src := range report.Sources {
				assert.Equal(t, legal.SourceLocal, src, step)
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyzeBatch_KeepsOrder(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, Config{BatchConcurrency: 2})
	docs := []legal.Document{
		nda(),
		legal.NewDocument("blank.txt", "  "),
		legal.NewDocument("lease.txt", "The tenant shall pay rent for the premises to the landlord each month."),
	}

	results, err := svc.AnalyzeBatch(context.Background(), docs, Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, docs[i].ID, r.DocumentID)
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, legal.DocumentNDA, results[0].Report.DocumentType.Type)
	assert.True(t, errors.IsCode(results[1].Err, errors.ErrCodeInputError))
	assert.Nil(t, results[1].Report)
	require.NoError(t, results[2].Err)
	assert.Equal(t, legal.DocumentLease, results[2].Report.DocumentType.Type)
}

func TestAnalyzeBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newLocalService().AnalyzeBatch(ctx, []legal.Document{nda()}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestBuildEngine(t *testing.T) {
	engine, err := BuildEngine("", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.Rules.Tables().Insight.SummarySentences)

	_, err = BuildEngine("/does/not/exist.yaml", 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRulesInvalid))
}

//Personal.AI order the ending
