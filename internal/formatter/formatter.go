// internal/formatter/formatter.go
package formatter

import (
	"strings"

	"pcaf-advisor/internal/models"
)

// Formatter derives an optional structured payload from a finished answer.
// Rendering is extract-only: every field in the payload is lifted from the
// answer text or the portfolio context, never synthesized. When the chosen
// shape cannot be extracted the answer stays plain text.
type Formatter struct{}

func New() *Formatter {
	return &Formatter{}
}

// Select picks the presentation shape from the classification, the raw
// query, and the answer text. First matching rule wins.
func (f *Formatter) Select(qc models.QueryClassification, query, answer string) models.ResponseFormat {
	lowerQuery := strings.ToLower(query)
	lowerAnswer := strings.ToLower(answer)

	switch {
	case qc.Intent == models.IntentCalculate && hasFormulaLine(answer):
		return models.FormatFormula
	case qc.Intent == models.IntentImplement:
		return models.FormatStepByStep
	case qc.Intent == models.IntentCompare:
		return models.FormatComparisonTable
	case qc.Intent == models.IntentComply && strings.Contains(lowerAnswer, "requirement"):
		return models.FormatComplianceMatrix
	case qc.Scope == models.ScopePortfolio:
		return models.FormatPortfolioSummary
	case strings.Contains(lowerQuery, "data") && strings.Contains(lowerQuery, "need"):
		return models.FormatDataRequirements
	case strings.Contains(lowerQuery, "checklist") || strings.Contains(lowerQuery, "ensure"):
		return models.FormatChecklist
	case hasNumberedSteps(answer):
		return models.FormatStepByStep
	case hasOptionLines(answer):
		return models.FormatComparisonTable
	default:
		return models.FormatStepByStep
	}
}

// Format renders the selected shape. A nil return means no structured
// payload could be extracted and the caller ships plain text only.
func (f *Formatter) Format(qc models.QueryClassification, query, answer string, pc *models.PortfolioContext) *models.StructuredData {
	switch f.Select(qc, query, answer) {
	case models.FormatFormula:
		if p := renderFormula(answer); p != nil {
			return models.NewFormula(p)
		}
	case models.FormatStepByStep:
		if p := renderSteps(answer); p != nil {
			return models.NewStepByStep(p)
		}
	case models.FormatComparisonTable:
		if p := renderComparison(answer); p != nil {
			return models.NewComparisonTable(p)
		}
	case models.FormatComplianceMatrix:
		if p := renderCompliance(answer); p != nil {
			return models.NewComplianceMatrix(p)
		}
	case models.FormatPortfolioSummary:
		if p := renderPortfolio(pc); p != nil {
			return models.NewPortfolioSummary(p)
		}
	case models.FormatDataRequirements:
		if p := renderDataRequirements(answer); p != nil {
			return models.NewDataRequirements(p)
		}
	case models.FormatChecklist:
		if p := renderChecklist(answer); p != nil {
			return models.NewChecklist(p)
		}
	}
	return nil
}
