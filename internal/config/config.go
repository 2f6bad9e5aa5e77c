// Package config provides configuration for the recall-mcp server.
//
// Values are resolved in three layers, later wins: built-in defaults, an
// optional YAML file (RECALL_CONFIG_PATH), then environment variables.
// Backing-store variables (POSTGRES_*, NEO4J_*, OPENAI_API_KEY) keep their
// conventional names; everything recall-specific uses the RECALL_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the server. It is built once in main and
// passed by reference; nothing reads the environment after load.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Postgres PostgresConfig `yaml:"postgres"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Memory   MemoryConfig   `yaml:"memory"`
}

// LLMConfig contains chat-model configuration.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`     // OpenAI API key (required)
	Model       string  `yaml:"model"`       // default: gpt-4.1-nano-2025-04-14
	Temperature float64 `yaml:"temperature"` // default: 0.2
}

// EmbedderConfig contains embedding-model configuration.
type EmbedderConfig struct {
	Model     string `yaml:"model"`      // default: text-embedding-3-small
	Dimension int    `yaml:"dimension"`  // default: 1536
	CacheSize int    `yaml:"cache_size"` // LRU entries, default: 1024
}

// PostgresConfig contains vector-store connection settings.
type PostgresConfig struct {
	Host       string `yaml:"host"`       // default: localhost
	Port       int    `yaml:"port"`       // default: 8432
	Database   string `yaml:"database"`   // default: postgres
	User       string `yaml:"user"`       // default: postgres
	Password   string `yaml:"password"`   // default: postgres
	SSLMode    string `yaml:"sslmode"`    // default: disable
	Collection string `yaml:"collection"` // default: memories
}

// DSN renders the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// Neo4jConfig contains graph-store connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`      // default: bolt://localhost:8687
	User     string `yaml:"user"`     // default: neo4j
	Password string `yaml:"password"` // default: recallgraph
}

// MemoryConfig contains facade-level settings.
type MemoryConfig struct {
	DefaultUserID string `yaml:"default_user_id"` // default: recall-mcp
	EnableGraph   bool   `yaml:"enable_graph"`    // default: false
}

// DefaultConfig returns a config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "gpt-4.1-nano-2025-04-14",
			Temperature: 0.2,
		},
		Embedder: EmbedderConfig{
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			CacheSize: 1024,
		},
		Postgres: PostgresConfig{
			Host:       "localhost",
			Port:       8432,
			Database:   "postgres",
			User:       "postgres",
			Password:   "postgres",
			SSLMode:    "disable",
			Collection: "memories",
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:8687",
			User:     "neo4j",
			Password: "recallgraph",
		},
		Memory: MemoryConfig{
			DefaultUserID: "recall-mcp",
			EnableGraph:   false,
		},
	}
}

// LoadConfig resolves the configuration: defaults, then the YAML file named
// by RECALL_CONFIG_PATH (if set), then environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("RECALL_CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: cannot read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: invalid config format in %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config: OPENAI_API_KEY is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config: temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("config: embedding dimension must be positive, got %d", c.Embedder.Dimension)
	}
	if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
		return fmt.Errorf("config: invalid postgres port %d", c.Postgres.Port)
	}
	return nil
}

// applyEnvOverrides applies environment variables on top of the current values.
func (c *Config) applyEnvOverrides() {
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnv("RECALL_LLM_MODEL", c.LLM.Model)
	c.LLM.Temperature = getEnvFloat("RECALL_LLM_TEMPERATURE", c.LLM.Temperature)

	c.Embedder.Model = getEnv("RECALL_EMBED_MODEL", c.Embedder.Model)
	c.Embedder.Dimension = getEnvInt("RECALL_EMBED_DIMENSION", c.Embedder.Dimension)
	c.Embedder.CacheSize = getEnvInt("RECALL_EMBED_CACHE_SIZE", c.Embedder.CacheSize)

	c.Postgres.Host = getEnv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnvInt("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.Database = getEnv("POSTGRES_DB", c.Postgres.Database)
	c.Postgres.User = getEnv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", c.Postgres.SSLMode)
	c.Postgres.Collection = getEnv("RECALL_COLLECTION", c.Postgres.Collection)

	c.Neo4j.URI = getEnv("NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.User = getEnv("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Password = getEnv("NEO4J_PASSWORD", c.Neo4j.Password)

	c.Memory.DefaultUserID = getEnv("RECALL_DEFAULT_USER_ID", c.Memory.DefaultUserID)
	c.Memory.EnableGraph = getEnvBool("RECALL_ENABLE_GRAPH", c.Memory.EnableGraph)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false
// (case-insensitive). Unparseable values fall back to the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
