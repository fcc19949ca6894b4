package model

import "time"

// Config is the full runtime configuration. Values come from flags,
// COMMTRACE_* environment variables, ~/.commtrace/config.yaml, and the
// defaults below, in that priority order.
type Config struct {
	Ingest      IngestConfig      `yaml:"ingest" json:"ingest"`
	Rules       string            `yaml:"rules" json:"rules"` // optional rules YAML path ("" = built-in tables)
	Seed        int64             `yaml:"seed" json:"seed"`   // 0 = time-derived seed
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// IngestConfig names the case files the ingestion layer looks for.
type IngestConfig struct {
	SMSFile    string   `yaml:"sms_file" json:"sms_file"`
	CDRFile    string   `yaml:"cdr_file" json:"cdr_file"`
	EmailFiles []string `yaml:"email_files" json:"email_files"`
}

// CacheConfig controls the in-memory result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig controls batch processing. The core pipeline itself
// is single-threaded per case; workers only run across independent cases.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// LLMConfig configures the optional narrative summarizer.
type LLMConfig struct {
	Provider          string  `yaml:"provider" json:"provider"` // "openai", "ollama", "" (disabled)
	Model             string  `yaml:"model" json:"model"`
	APIKey            string  `yaml:"-" json:"-"`
	BaseURL           string  `yaml:"base_url" json:"base_url"`
	Timeout           int     `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" json:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose     bool `yaml:"verbose" json:"verbose"`
	TopContacts int  `yaml:"top_contacts" json:"top_contacts"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			SMSFile:    "SMS-Data.csv",
			CDRFile:    "CDR-Call-Details.csv",
			EmailFiles: []string{"emails.csv", "email_data.csv", "email_messages.csv"},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			Provider:          "", // disabled by default
			Timeout:           30,
			MaxTokens:         1000,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Output: OutputConfig{
			TopContacts: 20,
		},
	}
}
