// internal/server/handler_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcaf-advisor/internal/common/config"
	"pcaf-advisor/internal/common/logger"
	"pcaf-advisor/internal/common/observability"
	"pcaf-advisor/internal/knowledge"
	"pcaf-advisor/internal/models"
	"pcaf-advisor/internal/pipeline"
)

// One observability instance for the whole package; the Prometheus
// exporter registers collectors globally.
var testObs = observability.New("server-test", "")

// ==========================
// Test Helper Functions
// ==========================

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	cfg := config.PipelineConfig{
		RelevanceThreshold:    0.1,
		MaxCandidates:         3,
		HighConfidenceScore:   0.7,
		MediumConfidenceScore: 0.4,
	}
	p := pipeline.New(nil, knowledge.DefaultTable(), cfg, testObs, log)
	return NewServeMux(NewHandler(p, log), log)
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.AnswerEnvelope {
	t.Helper()
	var envelope models.AnswerEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	return errResp
}

// ==========================
// Ask Endpoint Tests
// ==========================

func TestAsk_ValidQuery(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ask",
		`{"query": "How do I calculate the attribution factor?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, envelope.Text, "Attribution Factor")
	assert.Equal(t, models.ConfidenceHigh, envelope.Confidence)
	assert.NotEmpty(t, envelope.Sources)
	assert.NotEmpty(t, envelope.FollowUpQuestions)
	require.NotNil(t, envelope.StructuredData)
	assert.Equal(t, models.FormatFormula, envelope.StructuredData.Format)
}

func TestAsk_PortfolioContext(t *testing.T) {
	handler := newTestServer(t)

	body := `{
		"query": "What is my current data quality score?",
		"portfolio": {
			"totalLoans": 2847,
			"totalOutstanding": 45000000,
			"dataQuality": {"averageScore": 2.8, "complianceStatus": "compliant"}
		}
	}`
	rec := doRequest(t, handler, http.MethodPost, "/api/ask", body)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, envelope.Text, "Loans analyzed: 2,847")
	assert.Contains(t, envelope.Text, "$45.0 million")
}

func TestAsk_OutOfDomainStillOK(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ask",
		`{"query": "What is the best pizza in town?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.ConfidenceMedium, envelope.Confidence)
	assert.Contains(t, envelope.Text, "outside")
}

// ==========================
// Request Validation Tests
// ==========================

func TestAsk_MalformedRequests(t *testing.T) {
	handler := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"missing query", `{"portfolio": {"totalLoans": 10}}`},
		{"empty query", `{"query": ""}`},
		{"query wrong type", `{"query": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/ask", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			errResp := decodeError(t, rec)
			assert.Equal(t, "MALFORMED_REQUEST", errResp.Code)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/ask", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ==========================
// Operational Endpoint Tests
// ==========================

func TestHealthz(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestMetricsExposed(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	handler := newTestServer(t)

	first := doRequest(t, handler, http.MethodGet, "/healthz", "")
	second := doRequest(t, handler, http.MethodGet, "/healthz", "")

	assert.NotEmpty(t, first.Header().Get("X-Request-ID"))
	assert.NotEqual(t, first.Header().Get("X-Request-ID"), second.Header().Get("X-Request-ID"))
}
