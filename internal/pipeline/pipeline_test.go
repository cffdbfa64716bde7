// internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcaf-advisor/internal/common/config"
	apperrors "pcaf-advisor/internal/common/errors"
	"pcaf-advisor/internal/common/logger"
	"pcaf-advisor/internal/common/observability"
	"pcaf-advisor/internal/knowledge"
	"pcaf-advisor/internal/models"
	"pcaf-advisor/internal/retriever"
)

// One observability instance for the whole package; the Prometheus
// exporter registers collectors globally.
var testObs = observability.New("pipeline-test", "")

// ==========================
// Test Helper Functions
// ==========================

type stubRetriever struct {
	candidates []models.RetrievalCandidate
	err        error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]models.RetrievalCandidate, error) {
	return s.candidates, s.err
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		RelevanceThreshold:    0.1,
		MaxCandidates:         3,
		HighConfidenceScore:   0.7,
		MediumConfidenceScore: 0.4,
	}
}

func newTestPipeline(t *testing.T, stub *stubRetriever) *Pipeline {
	t.Helper()
	var r retriever.Retriever
	if stub != nil {
		r = stub
	}
	return New(r, knowledge.DefaultTable(), testPipelineConfig(), testObs, logger.NewTestLogger(t))
}

func semanticCandidate(text string, relevance float64) models.RetrievalCandidate {
	return models.RetrievalCandidate{
		DocumentID:     "doc-1",
		Text:           text,
		Metadata:       map[string]string{"source": "PCAF Global Standard - Motor Vehicle Methodology"},
		RelevanceScore: relevance,
	}
}

// ==========================
// Tier Resolution Tests
// ==========================

func TestAnswer_SemanticTier(t *testing.T) {
	stub := &stubRetriever{candidates: []models.RetrievalCandidate{
		semanticCandidate("Measured charging data for an electric vehicle supports Option 1, the most accurate data quality level.", 0.9),
	}}
	p := newTestPipeline(t, stub)

	envelope := p.Answer(context.Background(), Request{Query: "How does PCAF treat electric vehicle charging data?"})

	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
	assert.Contains(t, envelope.Text, "Measured charging data")
	assert.Equal(t, []string{"PCAF Global Standard - Motor Vehicle Methodology"}, envelope.Sources)
	assert.NotEmpty(t, envelope.FollowUpQuestions)
}

func TestAnswer_SemanticConfidenceBands(t *testing.T) {
	tests := []struct {
		name      string
		relevance float64
		expected  models.Confidence
	}{
		{"above high band", 0.85, models.ConfidenceHigh},
		{"between bands", 0.55, models.ConfidenceMedium},
		{"below medium band", 0.25, models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRetriever{candidates: []models.RetrievalCandidate{
				semanticCandidate("Each financed vehicle carries its own data quality score under the methodology.", tt.relevance),
			}}
			p := newTestPipeline(t, stub)

			envelope := p.Answer(context.Background(), Request{Query: "How are scores assigned?"})
			assert.Equal(t, tt.expected, envelope.Confidence)
		})
	}
}

func TestAnswer_RetrievalFailureFallsThrough(t *testing.T) {
	stub := &stubRetriever{err: apperrors.NewEmbeddingFailedError(assert.AnError)}
	p := newTestPipeline(t, stub)

	envelope := p.Answer(context.Background(), Request{Query: "What are the PCAF data quality options?"})

	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
	assert.Contains(t, envelope.Text, "Option 1: Real fuel consumption data")
}

func TestAnswer_RelevanceAtThresholdFallsThrough(t *testing.T) {
	stub := &stubRetriever{candidates: []models.RetrievalCandidate{
		semanticCandidate("Exactly at the floor, this candidate must not be served.", 0.1),
	}}
	p := newTestPipeline(t, stub)

	envelope := p.Answer(context.Background(), Request{Query: "What are the PCAF data quality options?"})

	assert.NotContains(t, envelope.Text, "at the floor")
	assert.Contains(t, envelope.Text, "Option 1: Real fuel consumption data")
	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
}

func TestAnswer_LowRelevanceFallsThrough(t *testing.T) {
	stub := &stubRetriever{candidates: []models.RetrievalCandidate{
		semanticCandidate("Barely related text about vehicles.", 0.05),
	}}
	p := newTestPipeline(t, stub)

	envelope := p.Answer(context.Background(), Request{Query: "Tell me about pcaf generally"})

	assert.Equal(t, models.ConfidenceMedium, envelope.Confidence)
	assert.Contains(t, envelope.Text, "rephrase")
}

func TestAnswer_PatternTierFormula(t *testing.T) {
	p := newTestPipeline(t, nil)

	envelope := p.Answer(context.Background(), Request{Query: "How do I calculate the attribution factor?"})

	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
	assert.Contains(t, envelope.Sources, "PCAF Global Standard - Motor Vehicle Methodology")
	require.NotNil(t, envelope.StructuredData)
	require.NoError(t, envelope.StructuredData.Validate())
	assert.Equal(t, models.FormatFormula, envelope.StructuredData.Format)
	assert.Equal(t, "Attribution Factor", envelope.StructuredData.Formula.Name)
}

func TestAnswer_OutOfDomainRedirect(t *testing.T) {
	p := newTestPipeline(t, nil)

	envelope := p.Answer(context.Background(), Request{Query: "What is the best pizza in town?"})

	assert.Equal(t, models.ConfidenceMedium, envelope.Confidence)
	assert.Contains(t, envelope.Text, "outside")
	assert.Nil(t, envelope.StructuredData)
	assert.NotEmpty(t, envelope.FollowUpQuestions)
}

// ==========================
// Enhancement Tests
// ==========================

func TestAnswer_PortfolioEnhancement(t *testing.T) {
	p := newTestPipeline(t, nil)

	envelope := p.Answer(context.Background(), Request{
		Query: "What is my current data quality score?",
		Portfolio: &models.PortfolioContext{
			TotalLoans: 2847,
			DataQuality: &models.DataQualitySummary{
				AverageScore:     2.8,
				ComplianceStatus: "compliant",
			},
		},
	})

	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
	assert.Contains(t, envelope.Text, "Loans analyzed: 2,847")
	assert.Contains(t, envelope.Text, "compliant")
	require.NotNil(t, envelope.StructuredData)
	assert.Equal(t, models.FormatPortfolioSummary, envelope.StructuredData.Format)
	assert.Equal(t, 2847, envelope.StructuredData.Portfolio.TotalLoans)
}

func TestAnswer_ContextIgnoredWithoutPersonalMarker(t *testing.T) {
	p := newTestPipeline(t, nil)

	envelope := p.Answer(context.Background(), Request{
		Query: "What are the PCAF data quality options?",
		Portfolio: &models.PortfolioContext{
			TotalLoans:  2847,
			DataQuality: &models.DataQualitySummary{AverageScore: 2.8, ComplianceStatus: "compliant"},
		},
	})

	assert.NotContains(t, envelope.Text, "Your Portfolio Status")
	assert.NotContains(t, envelope.Text, "fact checking")
	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
}

func TestAnswer_NoContextNoFabrication(t *testing.T) {
	p := newTestPipeline(t, nil)

	envelope := p.Answer(context.Background(), Request{Query: "What is my current data quality score?"})

	assert.NotContains(t, envelope.Text, "Your Portfolio Status")
}

// ==========================
// Validation Tests
// ==========================

func TestAnswer_DraftWithFewIssuesIsCleaned(t *testing.T) {
	stub := &stubRetriever{candidates: []models.RetrievalCandidate{
		semanticCandidate("Financed Emissions = Outstanding Amount × Annual Distance\nApply this to every loan in the vehicle book for a quick estimate.", 0.9),
	}}
	p := newTestPipeline(t, stub)

	envelope := p.Answer(context.Background(), Request{Query: "How do I estimate quickly?"})

	assert.Equal(t, models.ConfidenceMedium, envelope.Confidence)
	assert.NotContains(t, envelope.Text, "Annual Distance")
	assert.Contains(t, envelope.Text, "fact checking")
}

func TestAnswer_UnverifiableDraftReplaced(t *testing.T) {
	bad := "Your average score: 7 for the vehicle book.\n" +
		"The portfolio is compliant with an average score of 3.4 overall.\n" +
		"Financed Emissions = Outstanding Amount × Annual Distance"
	stub := &stubRetriever{candidates: []models.RetrievalCandidate{semanticCandidate(bad, 0.9)}}
	p := newTestPipeline(t, stub)

	envelope := p.Answer(context.Background(), Request{Query: "What is the average score?"})

	assert.Equal(t, models.ConfidenceMedium, envelope.Confidence)
	assert.Contains(t, envelope.Text, "could not verify")
	assert.NotContains(t, envelope.Text, "score: 7")
	assert.Equal(t, []string{"PCAF Global Standard - Motor Vehicle Methodology"}, envelope.Sources)
}

// ==========================
// Determinism Tests
// ==========================

func TestAnswer_Deterministic(t *testing.T) {
	p := newTestPipeline(t, nil)
	req := Request{Query: "How do I calculate the attribution factor?"}

	first := p.Answer(context.Background(), req)
	second := p.Answer(context.Background(), req)
	assert.Equal(t, first, second)
}
