// internal/validator/facts.go
package validator

// The fixed fact base for the motor-vehicle methodology: the formula
// whitelist, the vocabulary that marks a near-miss as a domain formula,
// and per-unit plausibility bounds.

// formulaWhitelist holds every valid formula in normalized form: lowercase,
// division and multiplication symbols mapped to / and *, single spaces.
var formulaWhitelist = map[string]bool{
	"attribution factor = outstanding amount / asset value":              true,
	"financed emissions = attribution factor * vehicle emissions":        true,
	"financed emissions = attribution factor * annual vehicle emissions": true,
	"weighted score = sum(score * outstanding) / total outstanding":      true,
	"emissions = distance * emission factor":                             true,
	"emissions = fuel consumption * emission factor":                     true,
}

// formulaVocabulary marks an unlisted equation as a domain formula rather
// than arithmetic noise.
var formulaVocabulary = []string{
	"factor", "emission", "emissions", "score", "outstanding",
	"amount", "value", "distance", "consumption",
}

// unitBound is the plausible range for a numeric value carrying a unit.
type unitBound struct {
	min float64
	max float64
}

var magnitudeBounds = map[string]unitBound{
	"count":            {1, 10_000_000},  // loans / vehicles
	"currency_million": {0, 1_000_000},   // $ millions
	"percentage":       {0, 100},         // %
	"mass":             {0, 100_000_000}, // tCO2e
}

// scoreKeywords are the words whose numeric neighbors must lie in the
// discrete 1-5 range.
var scoreKeywords = map[string]bool{
	"score": true, "scores": true, "scored": true, "scoring": true,
	"option": true, "options": true,
}

// complianceKeywords anchor the compliance-consistency check to stated
// averages. Bare score mentions stay out: "a score of 5 the coarsest
// estimate" next to a compliance claim describes the scale, not the
// portfolio.
var complianceKeywords = map[string]bool{
	"average": true,
}

// countKeywords attach the count bound to a neighboring number.
var countKeywords = map[string]bool{
	"loans": true, "loan": true, "vehicles": true, "exposures": true,
}

// massKeywords attach the mass bound to a neighboring number.
var massKeywords = map[string]bool{
	"tco2e": true, "tonnes": true, "tons": true,
}

// Answer length bounds in characters.
const (
	minAnswerLength = 40
	maxAnswerLength = 4000
)

// vehicleTerms drive the topic-alignment check.
var vehicleTerms = []string{"vehicle", "car", "truck", "motorcycle", "bus", "van", "suv"}
