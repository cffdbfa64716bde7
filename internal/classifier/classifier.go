// internal/classifier/classifier.go
package classifier

import (
	"strings"

	"pcaf-advisor/internal/models"
)

// Classifier derives intent, entities, scope and complexity from raw query
// text. Pure and total: it never fails and holds no state.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Entity vocabulary confidences are fixed per family.
const (
	dataQualityTierConfidence = 0.95
	vehicleTypeConfidence     = 0.9
	metricConfidence          = 0.85
)

// intentRule pairs an intent with its keyword family. Order is the fixed
// priority: the first matching family wins.
type intentRule struct {
	intent   models.Intent
	keywords []string
}

var intentRules = []intentRule{
	{models.IntentCalculate, []string{"calculate", "compute", "how much", "formula", "work out"}},
	{models.IntentCompare, []string{"compare", "difference", "versus", " vs ", "better than"}},
	{models.IntentImplement, []string{"implement", "set up", "getting started", "adopt", "roll out", "how do i start"}},
	{models.IntentComply, []string{"comply", "compliance", "compliant", "requirement", "regulation", "audit", "disclosure"}},
	{models.IntentTroubleshoot, []string{"wrong", "error", "incorrect", "not working", "problem", "fix"}},
	{models.IntentOptimize, []string{"optimize", "improve", "reduce", "better score", "increase accuracy"}},
	{models.IntentAnalyze, []string{"analyze", "analysis", "breakdown", "trend", "distribution"}},
}

var vehicleTypes = []string{
	"passenger car", "car", "suv", "motorcycle", "truck", "van", "bus",
	"electric vehicle", "ev", "vehicle",
}

var dataQualityTiers = []string{
	"option 1", "option 2", "option 3", "option 4", "option 5",
	"data quality score", "data quality",
}

var metricTerms = []string{
	"attribution factor", "financed emissions", "weighted score", "emission factor",
}

var portfolioMarkers = []string{
	"my ", "our ", " my", " our", "my loans", "our loans", "my portfolio", "our portfolio",
}

var regulatoryMarkers = []string{
	"comply", "compliance", "compliant", "audit", "regulator", "disclosure", "supervisory",
}

// Classify implements the spec contract: deterministic keyword
// classification with a fixed priority order, explain as the default
// intent.
func (c *Classifier) Classify(text string) models.QueryClassification {
	normalized := strings.ToLower(strings.TrimSpace(text))

	return models.QueryClassification{
		Intent:     classifyIntent(normalized),
		Entities:   extractEntities(normalized),
		Scope:      classifyScope(normalized),
		Complexity: classifyComplexity(normalized),
	}
}

func classifyIntent(normalized string) models.Intent {
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.intent
			}
		}
	}
	return models.IntentExplain
}

// extractEntities scans the fixed vocabularies in a stable order so
// repeated calls yield identical entity lists.
func extractEntities(normalized string) []models.Entity {
	var entities []models.Entity
	seen := make(map[string]bool)

	add := func(kind, value string, confidence float64) {
		key := kind + ":" + value
		if seen[key] {
			return
		}
		seen[key] = true
		entities = append(entities, models.Entity{
			Type:       kind,
			Value:      value,
			Confidence: confidence,
		})
	}

	for _, tier := range dataQualityTiers {
		if strings.Contains(normalized, tier) {
			add("data_quality_option", tier, dataQualityTierConfidence)
		}
	}
	for _, metric := range metricTerms {
		if strings.Contains(normalized, metric) {
			add("metric", metric, metricConfidence)
		}
	}
	for _, vt := range vehicleTypes {
		if containsWord(normalized, vt) {
			add("vehicle_type", vt, vehicleTypeConfidence)
		}
	}

	return entities
}

// containsWord matches a term on word boundaries, so "car" does not fire
// inside "carbon".
func containsWord(text, term string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func classifyScope(normalized string) models.Scope {
	for _, marker := range portfolioMarkers {
		if strings.Contains(normalized, marker) {
			return models.ScopePortfolio
		}
	}
	for _, marker := range regulatoryMarkers {
		if strings.Contains(normalized, marker) {
			return models.ScopeRegulatory
		}
	}
	if strings.Contains(normalized, "pcaf") || strings.Contains(normalized, "methodology") {
		return models.ScopeMethodology
	}
	return models.ScopeSingleItem
}

func classifyComplexity(normalized string) models.Complexity {
	entityCount := len(extractEntities(normalized))
	tokenCount := len(strings.Fields(normalized))

	switch {
	case entityCount > 2 || tokenCount > 10:
		return models.ComplexityComplex
	case entityCount > 1 || tokenCount > 6:
		return models.ComplexityModerate
	default:
		return models.ComplexitySimple
	}
}
