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

// Config holds the unisearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Typesense TypesenseConfig `yaml:"typesense"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Content   ContentConfig   `yaml:"content"`
	Cache     CacheConfig     `yaml:"cache"`
	Index     IndexConfig     `yaml:"index"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// TypesenseConfig holds index engine connection settings. An empty host or
// API key leaves indexing and search disabled rather than failing startup.
type TypesenseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Protocol   string `yaml:"protocol"` // http, https
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// OpenAIConfig holds AI collaborator settings.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ContentConfig holds content repository settings.
type ContentConfig struct {
	DSN string `yaml:"dsn"` // sqlite database path
}

// CacheConfig holds query cache settings. With no Redis addresses the cache
// falls back to an in-process LRU.
type CacheConfig struct {
	RedisAddrs []string `yaml:"redis_addrs"`
	Password   string   `yaml:"password"`
	KeyPrefix  string   `yaml:"key_prefix"`
	MemorySize int      `yaml:"memory_size"`
}

// IndexConfig holds synchronizer settings.
type IndexConfig struct {
	Types          []string `yaml:"types"` // indexable entity types
	PageSize       int      `yaml:"page_size"`
	BatchSize      int      `yaml:"batch_size"`
	ResyncDelaySec int      `yaml:"resync_delay_sec"`
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
		// Voice uploads pass through transcription; allow slow responses.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Typesense.Protocol == "" {
		c.Typesense.Protocol = "https"
	}
	if c.Typesense.Collection == "" {
		c.Typesense.Collection = "site_content"
	}
	if c.Typesense.TimeoutSec <= 0 {
		c.Typesense.TimeoutSec = 10
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "unisearch:"
	}
	if c.Cache.MemorySize <= 0 {
		c.Cache.MemorySize = 1024
	}
	if len(c.Index.Types) == 0 {
		c.Index.Types = []string{"post", "page", "product"}
	}
	if c.Index.PageSize <= 0 {
		c.Index.PageSize = 100
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = 40
	}
	if c.Index.ResyncDelaySec <= 0 {
		c.Index.ResyncDelaySec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Typesense.Protocol {
	case "http", "https":
	default:
		return fmt.Errorf("typesense.protocol must be http or https, got %q", c.Typesense.Protocol)
	}
	if c.Typesense.Host != "" && (c.Typesense.Port <= 0 || c.Typesense.Port > 65535) {
		return fmt.Errorf("typesense.port must be between 1 and 65535, got %d", c.Typesense.Port)
	}
	if c.Content.DSN == "" {
		return fmt.Errorf("content.dsn is required")
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
