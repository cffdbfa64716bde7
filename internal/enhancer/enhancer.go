// internal/enhancer/enhancer.go
package enhancer

import (
	"fmt"
	"strconv"
	"strings"

	"pcaf-advisor/internal/models"
)

// Enhancer appends a personalized status block to a drafted answer when
// the caller supplied portfolio numbers. It only ever echoes values
// present in the context; a missing required field yields no block at all
// rather than a guessed one.
type Enhancer struct{}

func New() *Enhancer {
	return &Enhancer{}
}

// Enhance returns the status fragment, or the empty string when the
// required fields (loan count, average score) are absent.
func (e *Enhancer) Enhance(pc *models.PortfolioContext) string {
	if pc == nil || pc.TotalLoans <= 0 || pc.DataQuality == nil || pc.DataQuality.AverageScore <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nYour Portfolio Status:\n")
	fmt.Fprintf(&b, "- Loans analyzed: %s\n", FormatCount(pc.TotalLoans))
	fmt.Fprintf(&b, "- Average data quality score: %s\n", FormatScore(pc.DataQuality.AverageScore))

	switch pc.DataQuality.ComplianceStatus {
	case "compliant":
		fmt.Fprintf(&b, "- Compliance status: compliant (weighted score within the %.1f threshold)\n", float64(models.ComplianceThreshold))
	case "non_compliant":
		fmt.Fprintf(&b, "- Compliance status: not yet compliant (weighted score above %.1f)\n", float64(models.ComplianceThreshold))
	}

	if pc.TotalOutstanding > 0 {
		fmt.Fprintf(&b, "- Outstanding amount: $%s million\n", FormatScore(pc.TotalOutstanding/1e6))
	}
	if pc.TotalEmissions > 0 {
		fmt.Fprintf(&b, "- Financed emissions: %s tCO2e\n", FormatCount(int(pc.TotalEmissions)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatCount renders an integer with thousands separators, e.g. 2847
// becomes "2,847".
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatScore renders a float with exactly one decimal place, keeping a
// trailing ".0".
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
