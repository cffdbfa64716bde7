// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	APIs     APIsConfig     `mapstructure:"apis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// APIsConfig holds settings for the two external semantic-search calls.
type APIsConfig struct {
	Embedding struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"embedding"`

	VectorSearch struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Collection string `mapstructure:"collection"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"vector_search"`
}

// SemanticSearchConfigured reports whether the upstream credentials are
// present. Absence is handled at call time as a fall-through, never as a
// startup failure.
func (a APIsConfig) SemanticSearchConfigured() bool {
	return a.Embedding.APIKey != "" && a.Embedding.BaseURL != "" && a.VectorSearch.BaseURL != ""
}

// CacheConfig holds the optional Redis cache used for collection-id
// resolution. The pipeline works without it.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Redis   RedisConfig `mapstructure:"redis"`
	TTL     int         `mapstructure:"ttl"` // seconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PipelineConfig holds the tiered-fallback tuning knobs.
type PipelineConfig struct {
	RelevanceThreshold    float64 `mapstructure:"relevance_threshold"`
	MaxCandidates         int     `mapstructure:"max_candidates"`
	HighConfidenceScore   float64 `mapstructure:"high_confidence_score"`
	MediumConfidenceScore float64 `mapstructure:"medium_confidence_score"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig holds the optional Jaeger trace export settings.
type TracingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JaegerURL string `mapstructure:"jaeger_url"`
}

func (s ServerConfig) Validate() error {
	if s.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	return nil
}
