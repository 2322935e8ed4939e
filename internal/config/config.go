package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the askdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	WebSearch WebSearchConfig `yaml:"websearch"`
	Index     IndexConfig     `yaml:"index"`
	Tagging   TaggingConfig   `yaml:"tagging"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings. Optional: with no addrs
// the engine runs fully in memory (no embedding cache, no FAQ store).
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings. An empty api_key
// disables the provider; vector-less items and text queries are then
// rejected.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"` // label for logs and metrics (default: openai)
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	Budget              BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings. The budget meters embedding
// and generation spend together.
type BudgetConfig struct {
	DailyTokenLimit      int64   `yaml:"daily_token_limit"`       // 0 = unlimited
	MonthlyTokenLimit    int64   `yaml:"monthly_token_limit"`     // 0 = unlimited
	CostPerMillionTokens float64 `yaml:"cost_per_million_tokens"` // для дашборда
	Action               string  `yaml:"action"`                  // "reject" | "warn" (default)
}

// LLMConfig holds chat completion provider settings for the generation
// strategy. An empty api_key drops the strategy from the chain.
type LLMConfig struct {
	Provider     string  `yaml:"provider"` // label for logs and metrics (default: openai)
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	SystemPrompt string  `yaml:"system_prompt"`
}

// WebSearchConfig holds the SearxNG-compatible search endpoint settings.
// An empty base_url drops the web search strategy from the chain.
type WebSearchConfig struct {
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	MaxResults int    `yaml:"max_results"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// IndexConfig holds vector index and recommendation settings.
type IndexConfig struct {
	Dimensions     int `yaml:"dimensions"`
	FetchFactor    int `yaml:"fetch_factor"`
	MaxFetchRounds int `yaml:"max_fetch_rounds"`
}

// TaggingConfig holds tag extraction settings.
type TaggingConfig struct {
	DictionaryDir  string  `yaml:"dictionary_dir"`
	MaxTags        int     `yaml:"max_tags"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// ResolverConfig holds per-strategy acceptance thresholds and the canned
// terminal answer.
type ResolverConfig struct {
	FAQThreshold            float64 `yaml:"faq_threshold"`
	GenerationThreshold     float64 `yaml:"generation_threshold"`
	WebSearchThreshold      float64 `yaml:"web_search_threshold"`
	RecommendationThreshold float64 `yaml:"recommendation_threshold"`
	DefaultAnswer           string  `yaml:"default_answer"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.WebSearch.MaxResults <= 0 {
		c.WebSearch.MaxResults = 5
	}
	if c.WebSearch.TimeoutSec <= 0 {
		c.WebSearch.TimeoutSec = 10
	}
	if c.Index.Dimensions <= 0 {
		c.Index.Dimensions = 1536
	}
	if c.Index.FetchFactor <= 0 {
		c.Index.FetchFactor = 4
	}
	if c.Index.MaxFetchRounds <= 0 {
		c.Index.MaxFetchRounds = 3
	}
	if c.Tagging.MaxTags <= 0 {
		c.Tagging.MaxTags = 8
	}
	if c.Tagging.FuzzyThreshold <= 0 {
		c.Tagging.FuzzyThreshold = 0.9
	}
	if c.Resolver.FAQThreshold <= 0 {
		c.Resolver.FAQThreshold = 0.85
	}
	if c.Resolver.GenerationThreshold <= 0 {
		c.Resolver.GenerationThreshold = 0.7
	}
	if c.Resolver.WebSearchThreshold <= 0 {
		c.Resolver.WebSearchThreshold = 0.5
	}
	if c.Resolver.RecommendationThreshold <= 0 {
		c.Resolver.RecommendationThreshold = 0.6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Embedding.APIKey != "" && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when embedding.api_key is set")
	}
	if c.LLM.APIKey != "" && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when llm.api_key is set")
	}
	switch c.Embedding.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"embedding.budget.action must be \"warn\" or \"reject\", got %q",
			c.Embedding.Budget.Action,
		)
	}
	if c.Tagging.FuzzyThreshold > 1 {
		return fmt.Errorf("tagging.fuzzy_threshold must be within (0, 1], got %v", c.Tagging.FuzzyThreshold)
	}
	for name, th := range map[string]float64{
		"resolver.faq_threshold":            c.Resolver.FAQThreshold,
		"resolver.generation_threshold":     c.Resolver.GenerationThreshold,
		"resolver.web_search_threshold":     c.Resolver.WebSearchThreshold,
		"resolver.recommendation_threshold": c.Resolver.RecommendationThreshold,
	} {
		if th > 1 {
			return fmt.Errorf("%s must be within (0, 1], got %v", name, th)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
