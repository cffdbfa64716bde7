// Package errors provides standardized error handling for the advisor
// pipeline. Every predictable failure maps to a code here so tier
// boundaries can decide between fall-through and a caller-visible status.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Retriever boundary (spec: ConfigurationError / RetrievalError).
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeEmbeddingFailed      ErrorCode = "EMBEDDING_FAILED"
	ErrCodeCollectionNotFound   ErrorCode = "COLLECTION_NOT_FOUND"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeUpstreamAuthFailed   ErrorCode = "UPSTREAM_AUTH_FAILED"
	ErrCodeMalformedUpstream    ErrorCode = "MALFORMED_UPSTREAM_RESPONSE"

	// Validator verdicts.
	ErrCodeAnswerValidationFailed ErrorCode = "ANSWER_VALIDATION_FAILED"

	// Caller side, the only class surfaced as a non-200 response.
	ErrCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"

	// Cache layer (optional, never fatal).
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationMissingError marks absent upstream credentials. It is
// never surfaced to the caller; the pipeline falls through to the next
// tier.
func NewConfigurationMissingError(what string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Semantic search credentials missing",
		Details:   what,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmbeddingFailedError creates a retryable embedding-call error.
func NewEmbeddingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingFailed,
		Message:   "Embedding generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollectionNotFoundError creates a non-retryable resolution error.
func NewCollectionNotFoundError(collection string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollectionNotFound,
		Message:   "Vector collection not found",
		Details:   fmt.Sprintf("collection: %s", collection),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable vector-search error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Vector similarity search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a timeout error. Treated identically to a
// non-success response at the tier boundary.
func NewSearchTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Semantic search timed out",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamAuthFailedError creates a non-retryable auth error.
func NewUpstreamAuthFailedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamAuthFailed,
		Message:   fmt.Sprintf("Authentication to '%s' failed", service),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedUpstreamError marks a response the adapter could not decode.
func NewMalformedUpstreamError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedUpstream,
		Message:   fmt.Sprintf("Malformed response from '%s'", service),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnswerValidationFailedError records a validator verdict with too many
// issues; the pipeline substitutes the safe fallback answer.
func NewAnswerValidationFailedError(issues []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnswerValidationFailed,
		Message:   "Drafted answer failed fact validation",
		Details:   strings.Join(issues, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedRequestError creates the one caller-visible error class.
func NewMalformedRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedRequest,
		Message:   "Request body is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError marks a cache miss caused by infrastructure.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Collection cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification helpers
// ==========================

// IsRetrievalFailure reports whether the error belongs to the class that
// triggers fall-through to the pattern tier.
func IsRetrievalFailure(code ErrorCode) bool {
	switch code {
	case ErrCodeConfigurationMissing,
		ErrCodeEmbeddingFailed,
		ErrCodeCollectionNotFound,
		ErrCodeSearchQueryFailed,
		ErrCodeSearchTimeout,
		ErrCodeUpstreamAuthFailed,
		ErrCodeMalformedUpstream:
		return true
	default:
		return false
	}
}

// HTTPStatus maps an error code to the status the boundary should return.
// Everything except a malformed request is absorbed by the pipeline and
// answers 200.
func HTTPStatus(code ErrorCode) int {
	if code == ErrCodeMalformedRequest {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "EMBEDDING") ||
		strings.Contains(codeStr, "COLLECTION") || strings.Contains(codeStr, "UPSTREAM"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REQUEST"):
		return "REQUEST"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
