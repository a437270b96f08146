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

// Config holds the topix API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Clustering  ClusteringConfig  `yaml:"clustering"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Auth        AuthConfig        `yaml:"auth"`
	Index       IndexConfig       `yaml:"index"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
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

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ClusteringConfig holds the engine thresholds. The incremental threshold is
// a cosine distance; the batch thresholds are token-overlap scores. They are
// on different scales on purpose.
type ClusteringConfig struct {
	AssignDistance  float64 `yaml:"assign_distance"`  // incremental join, cosine distance
	BatchJoin       float64 `yaml:"batch_join"`       // batch pairwise join, similarity
	BatchMerge      float64 `yaml:"batch_merge"`      // batch cluster merge, similarity
	MaxBatchSize    int     `yaml:"max_batch_size"`   // recluster window cap
	VectorDimension int     `yaml:"vector_dimension"` // embedding width for centroid storage
}

// MaintenanceConfig holds the consolidation sweep schedule.
type MaintenanceConfig struct {
	Enabled       bool    `yaml:"enabled"`
	IntervalSec   int     `yaml:"interval_sec"`
	MergeDistance float64 `yaml:"merge_distance"` // cosine distance between centroids
}

// IndexConfig holds HNSW index settings for the centroid indexes.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix   string `yaml:"key_prefix"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // embedding cache TTL
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "openai" (or any OpenAI-compatible endpoint)
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Instruction string `yaml:"instruction"` // optional prefix prepended to every text
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
	if c.Clustering.AssignDistance <= 0 {
		c.Clustering.AssignDistance = 0.3
	}
	if c.Clustering.BatchJoin <= 0 {
		c.Clustering.BatchJoin = 0.5
	}
	if c.Clustering.BatchMerge <= 0 {
		c.Clustering.BatchMerge = 0.65
	}
	if c.Clustering.MaxBatchSize <= 0 {
		c.Clustering.MaxBatchSize = 500
	}
	if c.Clustering.VectorDimension <= 0 {
		c.Clustering.VectorDimension = 1536
	}
	if c.Maintenance.IntervalSec <= 0 {
		c.Maintenance.IntervalSec = 3600
	}
	if c.Maintenance.MergeDistance <= 0 {
		c.Maintenance.MergeDistance = 0.1
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "topix:"
	}
	if c.Storage.CacheTTLSec <= 0 {
		c.Storage.CacheTTLSec = 86400
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Clustering.AssignDistance >= 2 {
		return fmt.Errorf("clustering.assign_distance must be below 2 (cosine distance), got %v",
			c.Clustering.AssignDistance)
	}
	if c.Clustering.BatchJoin > 1 || c.Clustering.BatchMerge > 1 {
		return fmt.Errorf("clustering batch thresholds are similarity scores in (0, 1]")
	}
	if c.Clustering.BatchMerge < c.Clustering.BatchJoin {
		return fmt.Errorf("clustering.batch_merge (%v) must not be below batch_join (%v)",
			c.Clustering.BatchMerge, c.Clustering.BatchJoin)
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
