package config

// Config represents the full nexus configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Company name injected into instruction templates
	CompanyName string `yaml:"company_name" mapstructure:"company_name"`

	// Completion provider configuration
	LLM LLMConfig `yaml:"llm" mapstructure:"llm"`

	// Embedding index configuration
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Web server configuration
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig configures the completion gateway
type LLMConfig struct {
	APIKey     string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	FastModel  string  `yaml:"fast_model" mapstructure:"fast_model"`
	HeavyModel string  `yaml:"heavy_model" mapstructure:"heavy_model"`
	CacheTTL   int     `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
	MaxRetries int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSec int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	Temp       float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens  int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// EmbeddingConfig configures the semantic index
type EmbeddingConfig struct {
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	BatchSize  int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// StorageConfig configures SQLite paths
type StorageConfig struct {
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	GraphDBPath string `yaml:"graph_db_path" mapstructure:"graph_db_path"`
	GraphJSON   string `yaml:"graph_json" mapstructure:"graph_json"`
	DerivedDB   string `yaml:"derived_db_path" mapstructure:"derived_db_path"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LoggingConfig configures process logging
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Version:     "1",
		CompanyName: "Meridian Technologies",
		LLM: LLMConfig{
			BaseURL:    "https://api.openai.com/v1",
			FastModel:  "gpt-4o-mini",
			HeavyModel: "gpt-4o",
			CacheTTL:   300,
			MaxRetries: 3,
			TimeoutSec: 30,
			Temp:       0.3,
			MaxTokens:  4096,
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-large",
			Dimensions: 3072,
			BatchSize:  100,
		},
		Storage: StorageConfig{
			DataDir: "~/.nexus",
		},
		Server: ServerConfig{
			Addr: ":8400",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
