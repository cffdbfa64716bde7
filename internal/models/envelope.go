// internal/models/envelope.go
package models

// Confidence grades how much an answer should be trusted, independent of
// its textual content. It only ever moves downward during validation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Downgrade returns the lower of the two grades.
func (c Confidence) Downgrade(to Confidence) Confidence {
	if c.rank() <= to.rank() {
		return c
	}
	return to
}

func (c Confidence) rank() int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// Domain constants for the PCAF motor-vehicle methodology.
const (
	// Data-quality options are ordinally ranked 1 (best) to 5 (coarsest).
	MinDataQualityScore = 1
	MaxDataQualityScore = 5

	// A portfolio is compliant when its exposure-weighted score does not
	// exceed this threshold.
	ComplianceThreshold = 3.0
)

// AnswerEnvelope is the sole artifact returned to the caller.
type AnswerEnvelope struct {
	Text              string          `json:"text"`
	Confidence        Confidence      `json:"confidence"`
	Sources           []string        `json:"sources"`
	FollowUpQuestions []string        `json:"followUpQuestions"`
	StructuredData    *StructuredData `json:"structuredData,omitempty"`
}

// PortfolioContext carries caller-supplied aggregate numbers. The pipeline
// never fabricates values that are absent here.
type PortfolioContext struct {
	TotalLoans       int                 `json:"totalLoans"`
	TotalOutstanding float64             `json:"totalOutstanding,omitempty"` // USD
	TotalEmissions   float64             `json:"totalEmissions,omitempty"`   // tCO2e
	DataQuality      *DataQualitySummary `json:"dataQuality,omitempty"`
}

// DataQualitySummary is the portfolio-level data-quality aggregate.
type DataQualitySummary struct {
	AverageScore     float64        `json:"averageScore"`
	ComplianceStatus string         `json:"complianceStatus"` // "compliant" or "non_compliant"
	Distribution     map[string]int `json:"distribution,omitempty"`
}
