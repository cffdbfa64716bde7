// internal/models/structured.go
package models

import "fmt"

// ResponseFormat is the closed set of structured presentation shapes.
type ResponseFormat string

const (
	FormatStepByStep       ResponseFormat = "step_by_step"
	FormatComparisonTable  ResponseFormat = "comparison_table"
	FormatFormula          ResponseFormat = "formula"
	FormatChecklist        ResponseFormat = "checklist"
	FormatDataRequirements ResponseFormat = "data_requirements"
	FormatComplianceMatrix ResponseFormat = "compliance_matrix"
	FormatPortfolioSummary ResponseFormat = "portfolio_summary"
)

// StructuredData is a tagged union: Format determines which payload
// pointer is set, and exactly one must be set. The constructors below are
// the only sanctioned way to build one, so tag and payload cannot disagree.
type StructuredData struct {
	Format ResponseFormat `json:"format"`

	Steps        *StepByStepPayload       `json:"steps,omitempty"`
	Comparison   *ComparisonTablePayload  `json:"comparison,omitempty"`
	Formula      *FormulaPayload          `json:"formula,omitempty"`
	Checklist    *ChecklistPayload        `json:"checklist,omitempty"`
	Requirements *DataRequirementsPayload `json:"requirements,omitempty"`
	Compliance   *ComplianceMatrixPayload `json:"compliance,omitempty"`
	Portfolio    *PortfolioSummaryPayload `json:"portfolio,omitempty"`
}

type StepByStepPayload struct {
	Title string `json:"title,omitempty"`
	Steps []Step `json:"steps"`
}

type Step struct {
	Number int    `json:"number"`
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}

type ComparisonTablePayload struct {
	Title   string     `json:"title,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type FormulaPayload struct {
	Name       string     `json:"name"`
	Expression string     `json:"expression"`
	Variables  []Variable `json:"variables,omitempty"`
	Example    string     `json:"example,omitempty"`
}

type Variable struct {
	Symbol  string `json:"symbol"`
	Meaning string `json:"meaning"`
}

type ChecklistPayload struct {
	Title string   `json:"title,omitempty"`
	Items []string `json:"items"`
}

type DataRequirementsPayload struct {
	Options []OptionRequirements `json:"options"`
}

type OptionRequirements struct {
	Option       int      `json:"option"`
	Label        string   `json:"label,omitempty"`
	Requirements []string `json:"requirements"`
}

type ComplianceMatrixPayload struct {
	Requirements []ComplianceItem `json:"requirements"`
}

type ComplianceItem struct {
	Requirement string `json:"requirement"`
	Status      string `json:"status"` // "met", "not_met", "unknown"
	Detail      string `json:"detail,omitempty"`
}

type PortfolioSummaryPayload struct {
	TotalLoans       int     `json:"totalLoans"`
	TotalOutstanding float64 `json:"totalOutstanding,omitempty"`
	TotalEmissions   float64 `json:"totalEmissions,omitempty"`
	AverageScore     float64 `json:"averageScore,omitempty"`
	ComplianceStatus string  `json:"complianceStatus,omitempty"`
}

func NewStepByStep(p *StepByStepPayload) *StructuredData {
	return &StructuredData{Format: FormatStepByStep, Steps: p}
}

func NewComparisonTable(p *ComparisonTablePayload) *StructuredData {
	return &StructuredData{Format: FormatComparisonTable, Comparison: p}
}

func NewFormula(p *FormulaPayload) *StructuredData {
	return &StructuredData{Format: FormatFormula, Formula: p}
}

func NewChecklist(p *ChecklistPayload) *StructuredData {
	return &StructuredData{Format: FormatChecklist, Checklist: p}
}

func NewDataRequirements(p *DataRequirementsPayload) *StructuredData {
	return &StructuredData{Format: FormatDataRequirements, Requirements: p}
}

func NewComplianceMatrix(p *ComplianceMatrixPayload) *StructuredData {
	return &StructuredData{Format: FormatComplianceMatrix, Compliance: p}
}

func NewPortfolioSummary(p *PortfolioSummaryPayload) *StructuredData {
	return &StructuredData{Format: FormatPortfolioSummary, Portfolio: p}
}

// Validate checks that the tag and the populated payload agree.
func (s *StructuredData) Validate() error {
	var set bool
	switch s.Format {
	case FormatStepByStep:
		set = s.Steps != nil
	case FormatComparisonTable:
		set = s.Comparison != nil
	case FormatFormula:
		set = s.Formula != nil
	case FormatChecklist:
		set = s.Checklist != nil
	case FormatDataRequirements:
		set = s.Requirements != nil
	case FormatComplianceMatrix:
		set = s.Compliance != nil
	case FormatPortfolioSummary:
		set = s.Portfolio != nil
	default:
		return fmt.Errorf("unknown response format %q", s.Format)
	}
	if !set {
		return fmt.Errorf("payload missing for format %q", s.Format)
	}
	if s.payloadCount() != 1 {
		return fmt.Errorf("format %q carries more than one payload", s.Format)
	}
	return nil
}

func (s *StructuredData) payloadCount() int {
	n := 0
	for _, set := range []bool{
		s.Steps != nil, s.Comparison != nil, s.Formula != nil,
		s.Checklist != nil, s.Requirements != nil, s.Compliance != nil,
		s.Portfolio != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
