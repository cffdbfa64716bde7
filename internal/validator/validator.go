// internal/validator/validator.go
package validator

import (
	"fmt"
	"strings"

	"pcaf-advisor/internal/common/metrics"
	"pcaf-advisor/internal/models"
)

// Check labels, also used as metric label values.
const (
	CheckScoreRange  = "score_range"
	CheckCompliance  = "compliance_consistency"
	CheckFormula     = "formula"
	CheckUnsupported = "unsupported_claim"
	CheckMagnitude   = "magnitude"
	CheckLength      = "length"
	CheckTopic       = "topic_alignment"
)

// Validator runs every drafted answer through a fixed battery of checks
// against the motor-vehicle fact base. It never calls anything external
// and is safe for concurrent use.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate inspects a draft answer. Checks never upgrade confidence; each
// finding either caps it at medium or drops it to low.
func (v *Validator) Validate(draft, query string, sources []string) models.ValidationResult {
	result := models.ValidationResult{
		IsValid:    true,
		Confidence: models.ConfidenceHigh,
	}

	tokens := tokenize(draft)
	lower := strings.ToLower(draft)

	v.checkScoreRange(tokens, &result)
	v.checkComplianceConsistency(tokens, lower, &result)
	v.checkFormulas(draft, &result)
	v.checkUnsupportedClaims(tokens, lower, sources, &result)
	v.checkMagnitudes(tokens, &result)
	v.checkLength(draft, &result)
	v.checkTopicAlignment(lower, query, &result)

	if len(result.Issues) > 0 {
		result.IsValid = false
	}
	return result
}

func (v *Validator) record(result *models.ValidationResult, check, issue string) {
	result.Issues = append(result.Issues, issue)
	metrics.ValidationIssues.WithLabelValues(check).Inc()
}

// checkScoreRange flags score or option numbers outside the discrete 1-5
// scale. Money, percentages and separator-formatted counts are not scores
// and are skipped.
func (v *Validator) checkScoreRange(tokens []token, result *models.ValidationResult) {
	for i, t := range tokens {
		if !t.isNumber || t.hasDollar || t.hasPercent || t.hasComma {
			continue
		}
		if !nearKeyword(tokens, i, 2, scoreKeywords) {
			continue
		}
		if t.value < models.MinDataQualityScore || t.value > models.MaxDataQualityScore {
			v.record(result, CheckScoreRange,
				fmt.Sprintf("score value %s is outside the valid range %d-%d",
					t.raw, models.MinDataQualityScore, models.MaxDataQualityScore))
			result.Confidence = result.Confidence.Downgrade(models.ConfidenceLow)
		}
	}
}

// checkComplianceConsistency flags drafts that call a portfolio compliant
// while quoting an average above the threshold. Only numbers that follow
// an "average" statement count; scale descriptions like "a score of 5" or
// "asset class average" are not portfolio averages.
func (v *Validator) checkComplianceConsistency(tokens []token, lower string, result *models.ValidationResult) {
	affirmative := lower
	for _, neg := range []string{"non-compliant", "non_compliant", "not yet compliant", "not compliant"} {
		affirmative = strings.ReplaceAll(affirmative, neg, "")
	}
	if !strings.Contains(affirmative, "compliant") {
		return
	}

	for i, t := range tokens {
		if !t.isNumber || t.hasDollar || t.hasPercent || t.hasComma {
			continue
		}
		if !keywordPrecedes(tokens, i, 3, complianceKeywords) {
			continue
		}
		if t.value > models.ComplianceThreshold && t.value <= models.MaxDataQualityScore {
			v.record(result, CheckCompliance,
				fmt.Sprintf("answer claims compliance while citing an average of %s above the %.1f threshold",
					t.raw, models.ComplianceThreshold))
			result.Confidence = result.Confidence.Downgrade(models.ConfidenceLow)
			return
		}
	}
}

// checkFormulas verifies every formula definition against the whitelist.
// Worked numeric examples (no alphabetic label before the equals sign) are
// skipped, and unlisted equations only count when they use methodology
// vocabulary.
func (v *Validator) checkFormulas(draft string, result *models.ValidationResult) {
	for _, line := range strings.Split(draft, "\n") {
		label, expr, ok := extractFormula(line)
		if !ok {
			continue
		}
		normalized := normalizeFormula(label + " = " + expr)
		if formulaWhitelist[normalized] {
			continue
		}
		if !containsAny(normalized, formulaVocabulary) {
			continue
		}
		v.record(result, CheckFormula,
			fmt.Sprintf("unrecognized formula %q", strings.TrimSpace(line)))
		result.Confidence = result.Confidence.Downgrade(models.ConfidenceMedium)
	}
}

// checkUnsupportedClaims flags portfolio-specific figures in an answer
// that cites no sources at all.
func (v *Validator) checkUnsupportedClaims(tokens []token, lower string, sources []string, result *models.ValidationResult) {
	if len(sources) > 0 {
		return
	}
	if !strings.Contains(lower, "your portfolio") && !strings.Contains(lower, "your loans") {
		return
	}
	for i, t := range tokens {
		if !t.isNumber {
			continue
		}
		if t.hasDollar || t.hasPercent || t.hasComma || nearKeyword(tokens, i, 2, countKeywords) {
			v.record(result, CheckUnsupported,
				"portfolio-specific figures are present but no sources are cited")
			result.Confidence = result.Confidence.Downgrade(models.ConfidenceLow)
			return
		}
	}
}

// checkMagnitudes applies per-unit plausibility bounds to numbers that
// carry a recognizable unit.
func (v *Validator) checkMagnitudes(tokens []token, result *models.ValidationResult) {
	for i, t := range tokens {
		if !t.isNumber {
			continue
		}

		unit := classifyUnit(tokens, i)
		if unit == "" {
			continue
		}
		bound := magnitudeBounds[unit]
		if t.value < bound.min || t.value > bound.max {
			v.record(result, CheckMagnitude,
				fmt.Sprintf("%s value %s is outside the plausible range %g-%g",
					unit, t.raw, bound.min, bound.max))
			result.Confidence = result.Confidence.Downgrade(models.ConfidenceMedium)
		}
	}
}

func classifyUnit(tokens []token, i int) string {
	t := tokens[i]
	switch {
	case t.hasDollar && nextWordIs(tokens, i, "million"):
		return "currency_million"
	case t.hasPercent:
		return "percentage"
	case nearKeyword(tokens, i, 2, massKeywords):
		return "mass"
	case !t.hasDollar && nearKeyword(tokens, i, 2, countKeywords):
		return "count"
	}
	return ""
}

func nextWordIs(tokens []token, i int, word string) bool {
	return i+1 < len(tokens) && tokens[i+1].word == word
}

// checkLength enforces the answer length floor and ceiling.
func (v *Validator) checkLength(draft string, result *models.ValidationResult) {
	n := len(draft)
	switch {
	case n < minAnswerLength:
		v.record(result, CheckLength,
			fmt.Sprintf("answer is %d characters, below the %d character minimum", n, minAnswerLength))
		result.Confidence = result.Confidence.Downgrade(models.ConfidenceMedium)
	case n > maxAnswerLength:
		v.record(result, CheckLength,
			fmt.Sprintf("answer is %d characters, above the %d character maximum", n, maxAnswerLength))
		result.Suggestions = append(result.Suggestions,
			"split the answer into a summary and a detail section")
	}
}

// checkTopicAlignment flags answers that never mention vehicles for a
// query that asked about them.
func (v *Validator) checkTopicAlignment(lowerAnswer, query string, result *models.ValidationResult) {
	lowerQuery := strings.ToLower(query)
	if !containsAny(lowerQuery, vehicleTerms) {
		return
	}
	if containsAny(lowerAnswer, vehicleTerms) {
		return
	}
	v.record(result, CheckTopic,
		"query asks about vehicles but the answer never mentions them")
	result.Confidence = result.Confidence.Downgrade(models.ConfidenceMedium)
}

// Clean strips the lines behind score and formula findings from a draft
// and appends a disclosure naming the downgraded confidence. Drafts with
// no findings pass through untouched.
func (v *Validator) Clean(draft string, result models.ValidationResult) string {
	if len(result.Issues) == 0 {
		return draft
	}

	lines := strings.Split(draft, "\n")
	kept := make([]string, 0, len(lines))
	removed := false
	for _, line := range lines {
		if lineViolates(line) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}

	cleaned := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	if removed {
		return cleaned + fmt.Sprintf(
			"\n\nNote: parts of this answer were removed during fact checking; confidence is %s.",
			result.Confidence)
	}
	return cleaned + fmt.Sprintf("\n\nNote: confidence is %s after fact checking.", result.Confidence)
}

// lineViolates re-runs the score and formula checks on a single line.
func lineViolates(line string) bool {
	tokens := tokenize(line)
	for i, t := range tokens {
		if !t.isNumber || t.hasDollar || t.hasPercent || t.hasComma {
			continue
		}
		if !nearKeyword(tokens, i, 2, scoreKeywords) {
			continue
		}
		if t.value < models.MinDataQualityScore || t.value > models.MaxDataQualityScore {
			return true
		}
	}

	if label, expr, ok := extractFormula(line); ok {
		normalized := normalizeFormula(label + " = " + expr)
		if !formulaWhitelist[normalized] && containsAny(normalized, formulaVocabulary) {
			return true
		}
	}
	return false
}
