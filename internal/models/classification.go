// internal/models/classification.go
package models

// Intent is the primary action the user wants from the advisor.
type Intent string

const (
	IntentCalculate    Intent = "calculate"
	IntentExplain      Intent = "explain"
	IntentCompare      Intent = "compare"
	IntentImplement    Intent = "implement"
	IntentComply       Intent = "comply"
	IntentAnalyze      Intent = "analyze"
	IntentTroubleshoot Intent = "troubleshoot"
	IntentOptimize     Intent = "optimize"
)

// Scope describes what slice of the methodology the query targets.
type Scope string

const (
	ScopeSingleItem  Scope = "single_item"
	ScopePortfolio   Scope = "portfolio"
	ScopeMethodology Scope = "methodology"
	ScopeRegulatory  Scope = "regulatory"
)

// Complexity is a coarse difficulty grade used for format selection.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Entity is a domain noun extracted from the query text.
type Entity struct {
	Type       string  `json:"type"` // "vehicle_type", "data_quality_option", "metric"
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// QueryClassification is produced once per query and never mutated.
type QueryClassification struct {
	Intent     Intent     `json:"intent"`
	Entities   []Entity   `json:"entities"`
	Scope      Scope      `json:"scope"`
	Complexity Complexity `json:"complexity"`
}
