// internal/models/retrieval.go
package models

// RetrievalCandidate is one ranked hit from the semantic search backend.
// Candidates live only for the duration of a single pipeline call.
type RetrievalCandidate struct {
	DocumentID     string            `json:"documentId"`
	Text           string            `json:"text"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	RelevanceScore float64           `json:"relevanceScore"` // in [0,1]
}

// ValidationResult is the fact validator's verdict on a drafted answer.
type ValidationResult struct {
	IsValid     bool       `json:"isValid"`
	Confidence  Confidence `json:"confidence"`
	Issues      []string   `json:"issues"`
	Suggestions []string   `json:"suggestions"`
}
