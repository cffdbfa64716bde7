// internal/server/handler.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	apperrors "pcaf-advisor/internal/common/errors"
	"pcaf-advisor/internal/common/logger"
	"pcaf-advisor/internal/models"
	"pcaf-advisor/internal/pipeline"
)

// askSchema validates the inbound body before it is bound. The query is
// the only required field; portfolio numbers are optional.
const askSchema = `{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"portfolio": {
			"type": "object",
			"properties": {
				"totalLoans": {"type": "integer", "minimum": 0},
				"totalOutstanding": {"type": "number", "minimum": 0},
				"totalEmissions": {"type": "number", "minimum": 0},
				"dataQuality": {"type": "object"}
			}
		}
	}
}`

// AskRequest is the inbound body for POST /api/ask.
type AskRequest struct {
	Query     string                   `json:"query"`
	Portfolio *models.PortfolioContext `json:"portfolio,omitempty"`
}

// ErrorResponse is the body for every non-200 answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handler implements the /api/ask and /healthz endpoints.
type Handler struct {
	pipeline *pipeline.Pipeline
	schema   *gojsonschema.Schema
	logger   logger.Logger
}

func NewHandler(p *pipeline.Pipeline, log logger.Logger) *Handler {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(askSchema))
	if err != nil {
		panic(err)
	}
	return &Handler{
		pipeline: p,
		schema:   schema,
		logger:   log.With(map[string]interface{}{"component": "server"}),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := RequestIDFrom(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		h.respondMalformed(w, "unreadable request body")
		return
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		h.respondMalformed(w, "request body is not valid JSON")
		return
	}
	if !result.Valid() {
		h.respondMalformed(w, validationDetails(result))
		return
	}

	var req AskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondMalformed(w, "request body does not match the expected shape")
		return
	}

	envelope := h.pipeline.Answer(r.Context(), pipeline.Request{
		Query:     req.Query,
		Portfolio: req.Portfolio,
	})

	h.logger.Info("ask handled", map[string]interface{}{
		"request_id":  reqID,
		"confidence":  string(envelope.Confidence),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	writeJSON(w, http.StatusOK, envelope)
}

func (h *Handler) respondMalformed(w http.ResponseWriter, details string) {
	appErr := apperrors.NewMalformedRequestError(details)
	writeJSON(w, apperrors.HTTPStatus(appErr.Code), ErrorResponse{
		Error: details,
		Code:  string(appErr.Code),
	})
}

func validationDetails(result *gojsonschema.Result) string {
	if len(result.Errors()) == 0 {
		return "request body is invalid"
	}
	return result.Errors()[0].String()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
