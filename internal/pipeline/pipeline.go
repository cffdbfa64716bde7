// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"strings"
	"time"

	"pcaf-advisor/internal/classifier"
	"pcaf-advisor/internal/common/config"
	apperrors "pcaf-advisor/internal/common/errors"
	"pcaf-advisor/internal/common/logger"
	"pcaf-advisor/internal/common/metrics"
	"pcaf-advisor/internal/common/observability"
	"pcaf-advisor/internal/enhancer"
	"pcaf-advisor/internal/formatter"
	"pcaf-advisor/internal/knowledge"
	"pcaf-advisor/internal/models"
	"pcaf-advisor/internal/retriever"
	"pcaf-advisor/internal/validator"
)

// Answer tiers, in fall-through order.
const (
	TierSemantic = "semantic"
	TierPattern  = "pattern"
	TierStatic   = "static"
)

// Request is one advisor invocation.
type Request struct {
	Query     string
	Portfolio *models.PortfolioContext
}

// Pipeline runs a query through classification, tiered answer resolution,
// enhancement, validation, and formatting. It holds no per-request state;
// the same request always yields the same envelope apart from upstream
// retrieval variance.
type Pipeline struct {
	classifier *classifier.Classifier
	retriever  retriever.Retriever // nil when semantic search is not wired
	table      *knowledge.Table
	enhancer   *enhancer.Enhancer
	validator  *validator.Validator
	formatter  *formatter.Formatter
	cfg        config.PipelineConfig
	obs        *observability.Observability
	logger     logger.Logger
}

// New assembles the pipeline. retriever may be nil, in which case every
// query starts at the pattern tier.
func New(
	r retriever.Retriever,
	table *knowledge.Table,
	cfg config.PipelineConfig,
	obs *observability.Observability,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: classifier.New(),
		retriever:  r,
		table:      table,
		enhancer:   enhancer.New(),
		validator:  validator.New(),
		formatter:  formatter.New(),
		cfg:        cfg,
		obs:        obs,
		logger:     log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// draft is an answer before enhancement and validation.
type draft struct {
	tier       string
	text       string
	confidence models.Confidence
	sources    []string
	followUps  []string
}

// Answer resolves a query to an envelope. It never returns an error:
// every internal failure degrades to a lower tier or the safe fallback.
func (p *Pipeline) Answer(ctx context.Context, req Request) models.AnswerEnvelope {
	start := time.Now()
	ctx, end := p.obs.StartSpan(ctx, "pipeline.answer")
	defer end()

	qc := p.classify(ctx, req.Query)
	d := p.resolve(ctx, req.Query, qc)

	// The status block only belongs on personal queries. Supplying context
	// alongside an impersonal question must not alter the answer.
	if qc.Scope == models.ScopePortfolio {
		if block := p.enhance(ctx, req.Portfolio); block != "" {
			d.text += block
		}
	}

	envelope := p.validateAndFormat(ctx, req, qc, d)

	metrics.QueriesTotal.WithLabelValues(d.tier).Inc()
	metrics.AnswerConfidence.WithLabelValues(string(envelope.Confidence)).Inc()
	p.obs.RecordQueryProcessed(ctx, d.tier)
	p.obs.RecordQueryDuration(ctx, time.Since(start))

	p.logger.Info("query answered", map[string]interface{}{
		"tier":        d.tier,
		"intent":      string(qc.Intent),
		"confidence":  string(envelope.Confidence),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return envelope
}

func (p *Pipeline) classify(ctx context.Context, query string) models.QueryClassification {
	_, end := p.obs.StartSpan(ctx, "pipeline.classify")
	defer end()
	return p.classifier.Classify(query)
}

// resolve walks the tiers: semantic first, then the pattern table, then
// the static fallback. A tier that cannot produce an answer is skipped,
// never fatal.
func (p *Pipeline) resolve(ctx context.Context, query string, qc models.QueryClassification) draft {
	if d, ok := p.resolveSemantic(ctx, query, qc); ok {
		return d
	}
	if d, ok := p.resolvePattern(ctx, query); ok {
		return d
	}
	return p.resolveStatic(query)
}

func (p *Pipeline) resolveSemantic(ctx context.Context, query string, qc models.QueryClassification) (draft, bool) {
	if p.retriever == nil {
		return draft{}, false
	}
	ctx, end := p.obs.StartSpan(ctx, "pipeline.retrieve")
	defer end()

	candidates, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		if stdErr, ok := err.(*apperrors.StandardError); ok && apperrors.IsRetrievalFailure(stdErr.Code) {
			p.logger.WithError(err).Info("semantic tier unavailable, falling through", nil)
			return draft{}, false
		}
		p.logger.WithError(err).Warn("unexpected retrieval error, falling through", nil)
		return draft{}, false
	}

	// A candidate must score strictly above the floor; a score exactly at
	// the threshold falls through to the pattern tier.
	kept := candidates[:0]
	for _, c := range candidates {
		if c.RelevanceScore > p.cfg.RelevanceThreshold {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return draft{}, false
	}

	best := kept[0]
	return draft{
		tier:       TierSemantic,
		text:       best.Text,
		confidence: p.confidenceFor(best.RelevanceScore),
		sources:    candidateSources(kept),
		followUps:  followUpsFor(qc.Intent),
	}, true
}

// confidenceFor grades the top candidate's relevance against the
// configured bands.
func (p *Pipeline) confidenceFor(relevance float64) models.Confidence {
	switch {
	case relevance > p.cfg.HighConfidenceScore:
		return models.ConfidenceHigh
	case relevance > p.cfg.MediumConfidenceScore:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// candidateSources collects the distinct source labels of the candidates
// actually used, in candidate order. Candidates without a source label
// fall back to the methodology citation.
func candidateSources(candidates []models.RetrievalCandidate) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		s := c.Metadata["source"]
		if s == "" {
			s = knowledge.SourceMotorVehicleMethodology
		}
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	return sources
}

func (p *Pipeline) resolvePattern(ctx context.Context, query string) (draft, bool) {
	_, end := p.obs.StartSpan(ctx, "pipeline.pattern")
	defer end()

	entry, ok := p.table.MatchQuery(query)
	if !ok {
		return draft{}, false
	}
	return draft{
		tier:       TierPattern,
		text:       entry.Body,
		confidence: entry.Confidence,
		sources:    entry.Sources,
		followUps:  entry.FollowUps,
	}, true
}

// domainTerms decide whether the static tier answers with generic guidance
// or redirects an out-of-domain query.
var domainTerms = []string{
	"pcaf", "vehicle", "car", "truck", "loan", "emission", "carbon",
	"data quality", "attribution", "portfolio", "score", "financed",
	"motor", "fleet", "co2",
}

func (p *Pipeline) resolveStatic(query string) draft {
	normalized := knowledge.Normalize(query)
	for _, term := range domainTerms {
		if strings.Contains(normalized, term) {
			return draft{
				tier:       TierStatic,
				text:       staticGuidance,
				confidence: models.ConfidenceMedium,
				sources:    []string{knowledge.SourceMotorVehicleMethodology},
				followUps:  staticFollowUps,
			}
		}
	}
	return draft{
		tier:       TierStatic,
		text:       redirectGuidance,
		confidence: models.ConfidenceMedium,
		sources:    []string{knowledge.SourceMotorVehicleMethodology},
		followUps:  staticFollowUps,
	}
}

func (p *Pipeline) enhance(ctx context.Context, pc *models.PortfolioContext) string {
	_, end := p.obs.StartSpan(ctx, "pipeline.enhance")
	defer end()
	return p.enhancer.Enhance(pc)
}

// validateAndFormat runs the fact checks, cleans or replaces the draft,
// and attaches the structured payload.
func (p *Pipeline) validateAndFormat(ctx context.Context, req Request, qc models.QueryClassification, d draft) models.AnswerEnvelope {
	_, end := p.obs.StartSpan(ctx, "pipeline.validate")
	defer end()

	result := p.validator.Validate(d.text, req.Query, d.sources)
	text := d.text
	confidence := d.confidence

	switch {
	case len(result.Issues) > 2:
		p.logger.WithError(apperrors.NewAnswerValidationFailedError(result.Issues)).
			Warn("draft discarded after validation", map[string]interface{}{
				"tier":   d.tier,
				"issues": len(result.Issues),
			})
		text = safeFallback
		confidence = models.ConfidenceMedium
		d.sources = []string{knowledge.SourceMotorVehicleMethodology}
		d.followUps = staticFollowUps
	case len(result.Issues) > 0:
		text = p.validator.Clean(d.text, result)
		confidence = confidence.Downgrade(result.Confidence)
	}

	envelope := models.AnswerEnvelope{
		Text:              text,
		Confidence:        confidence,
		Sources:           d.sources,
		FollowUpQuestions: d.followUps,
	}

	if structured := p.formatter.Format(qc, req.Query, text, req.Portfolio); structured != nil {
		if err := structured.Validate(); err == nil {
			envelope.StructuredData = structured
		}
	}
	return envelope
}
