// internal/formatter/renderers.go
package formatter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"pcaf-advisor/internal/models"
)

var (
	numberedLine = regexp.MustCompile(`^\s*(\d+)[.)]\s+(.+)$`)
	optionLine   = regexp.MustCompile(`^Option\s+(\d+)\s*[:\s](.*)$`)
)

func hasNumberedSteps(answer string) bool {
	count := 0
	for _, line := range strings.Split(answer, "\n") {
		if numberedLine.MatchString(line) {
			count++
		}
	}
	return count >= 2
}

func hasOptionLines(answer string) bool {
	count := 0
	for _, line := range strings.Split(answer, "\n") {
		if optionLine.MatchString(line) {
			count++
		}
	}
	return count >= 2
}

// hasFormulaLine reports whether any line defines a formula: an equals
// sign with at least one purely alphabetic word directly before it.
func hasFormulaLine(answer string) bool {
	for _, line := range strings.Split(answer, "\n") {
		if _, _, ok := splitFormula(line); ok {
			return true
		}
	}
	return false
}

// splitFormula separates "Label = expression". The label is the trailing
// run of alphabetic words before the first equals sign; numeric left-hand
// sides are worked examples and do not qualify.
func splitFormula(line string) (label, expr string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	left := strings.Fields(line[:idx])
	var words []string
	for i := len(left) - 1; i >= 0; i-- {
		w := strings.Trim(left[i], ".,;:()")
		if w == "" || !isAlphabetic(w) {
			break
		}
		words = append([]string{w}, words...)
	}
	expr = strings.TrimRight(strings.TrimSpace(line[idx+1:]), ".")
	if len(words) == 0 || expr == "" {
		return "", "", false
	}
	return strings.Join(words, " "), expr, true
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return true
}

func renderSteps(answer string) *models.StepByStepPayload {
	var steps []models.Step
	for _, line := range strings.Split(answer, "\n") {
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		action, detail := splitActionDetail(m[2])
		steps = append(steps, models.Step{Number: n, Action: action, Detail: detail})
	}
	if len(steps) < 2 {
		return nil
	}
	return &models.StepByStepPayload{Steps: steps}
}

// splitActionDetail breaks a step body at the first sentence boundary.
func splitActionDetail(body string) (string, string) {
	if idx := strings.Index(body, ". "); idx > 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+2:])
	}
	return strings.TrimSpace(body), ""
}

func renderComparison(answer string) *models.ComparisonTablePayload {
	var rows [][]string
	for _, line := range strings.Split(answer, "\n") {
		m := optionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, []string{"Option " + m[1], strings.TrimSpace(m[2])})
	}
	if len(rows) < 2 {
		return nil
	}
	return &models.ComparisonTablePayload{
		Columns: []string{"Option", "Description"},
		Rows:    rows,
	}
}

func renderFormula(answer string) *models.FormulaPayload {
	payload := &models.FormulaPayload{}
	for _, line := range strings.Split(answer, "\n") {
		if payload.Name == "" {
			if label, expr, ok := splitFormula(line); ok {
				payload.Name = label
				payload.Expression = expr
				continue
			}
		}
		if payload.Example == "" && strings.Contains(strings.ToLower(line), "example") {
			payload.Example = strings.TrimSpace(line)
		}
	}
	if payload.Name == "" {
		return nil
	}
	return payload
}

func renderChecklist(answer string) *models.ChecklistPayload {
	var items []string
	for _, line := range strings.Split(answer, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "• ") {
			items = append(items, strings.TrimSpace(trimmed[2:]))
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &models.ChecklistPayload{Items: items}
}

func renderDataRequirements(answer string) *models.DataRequirementsPayload {
	var options []models.OptionRequirements
	for _, line := range strings.Split(answer, "\n") {
		m := optionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		var requirements []string
		for _, part := range strings.Split(m[2], ",") {
			if part = strings.TrimSpace(part); part != "" {
				requirements = append(requirements, part)
			}
		}
		if len(requirements) == 0 {
			continue
		}
		options = append(options, models.OptionRequirements{Option: n, Requirements: requirements})
	}
	if len(options) == 0 {
		return nil
	}
	return &models.DataRequirementsPayload{Options: options}
}

// renderCompliance lifts obligation sentences into matrix rows. Status is
// always "unknown" because the answer text does not carry per-requirement
// outcomes.
func renderCompliance(answer string) *models.ComplianceMatrixPayload {
	var items []models.ComplianceItem
	for _, sentence := range splitSentences(answer) {
		lower := strings.ToLower(sentence)
		if strings.Contains(lower, "must") || strings.Contains(lower, "required") ||
			strings.Contains(lower, "expected to") || strings.Contains(lower, "should disclose") {
			items = append(items, models.ComplianceItem{
				Requirement: sentence,
				Status:      "unknown",
			})
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &models.ComplianceMatrixPayload{Requirements: items}
}

func splitSentences(text string) []string {
	var sentences []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\n", " "), ". ") {
		if s := strings.TrimSpace(strings.TrimRight(raw, ".")); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func renderPortfolio(pc *models.PortfolioContext) *models.PortfolioSummaryPayload {
	if pc == nil || pc.TotalLoans <= 0 {
		return nil
	}
	payload := &models.PortfolioSummaryPayload{
		TotalLoans:       pc.TotalLoans,
		TotalOutstanding: pc.TotalOutstanding,
		TotalEmissions:   pc.TotalEmissions,
	}
	if pc.DataQuality != nil {
		payload.AverageScore = pc.DataQuality.AverageScore
		payload.ComplianceStatus = pc.DataQuality.ComplianceStatus
	}
	return payload
}
