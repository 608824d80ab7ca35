package model

import "time"

// Config holds the complete claimcheck configuration
type Config struct {
	Search  SearchConfig  `yaml:"search" json:"search"`
	Verify  VerifyConfig  `yaml:"verify" json:"verify"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
	LLM     LLMConfig     `yaml:"llm" json:"llm"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

// SearchConfig controls the underlying text search
type SearchConfig struct {
	CaseSensitive    bool     `yaml:"case_sensitive" json:"case_sensitive"`
	ContextLines     int      `yaml:"context_lines" json:"context_lines"`
	IncludeGlobs     []string `yaml:"include_globs" json:"include_globs"`
	ExcludeGlobs     []string `yaml:"exclude_globs" json:"exclude_globs"`
	RespectGitignore bool     `yaml:"respect_gitignore" json:"respect_gitignore"`
}

// VerifyConfig controls how references are aggregated into a verdict
type VerifyConfig struct {
	ExpandVariants  bool   `yaml:"expand_variants" json:"expand_variants"`
	ClassifyContext bool   `yaml:"classify_context" json:"classify_context"`
	MinPriority     string `yaml:"min_priority" json:"min_priority"` // "", "low", "medium", "high"
}

// MonitorConfig controls the live session monitor
type MonitorConfig struct {
	AutoVerify bool          `yaml:"auto_verify" json:"auto_verify"`
	UseDiff    bool          `yaml:"use_diff" json:"use_diff"` // Verify against the working-tree diff instead of plain search
	Debounce   time.Duration `yaml:"debounce" json:"debounce"`
	MaxQueue   int           `yaml:"max_queue" json:"max_queue"`
}

// LLMConfig configures the optional report summarizer
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai", "ollama", "" (disabled)
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"` // From environment only, never persisted
	BaseURL   string `yaml:"base_url" json:"base_url"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	Color         bool `yaml:"color" json:"color"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			CaseSensitive:    true,
			ContextLines:     2,
			RespectGitignore: true,
		},
		Verify: VerifyConfig{
			ExpandVariants:  true,
			ClassifyContext: true,
		},
		Monitor: MonitorConfig{
			AutoVerify: true,
			Debounce:   500 * time.Millisecond,
			MaxQueue:   256,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			MaxTokens: 1000,
		},
		Output: OutputConfig{
			Color:         true,
			IncludeFooter: true,
		},
	}
}
