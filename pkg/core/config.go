package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/symlog/symlog-go/pkg/insight"
)

// Config contains the complete configuration for a symlog client.
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        SQLite:   &core.SQLiteConfig{DBPath: "./symlog.db"},
//	    },
//	    Engine: core.EngineConfig{
//	        DetailLevel:    "patterns",
//	        MinOccurrences: 2,
//	    },
//	}
type Config struct {
	// Store configures the persistence backend.
	Store StoreConfig `json:"store"`

	// LLM configures the optional text-generation collaborator.
	// An empty provider leaves the collaborator absent; the engine is
	// fully functional without it.
	LLM LLMConfig `json:"llm"`

	// Engine configures the insight engine itself.
	Engine EngineConfig `json:"engine"`
}

// StoreConfig selects and configures a persistence backend.
//
// Supported providers: sqlite (default), postgres, mysql.
type StoreConfig struct {
	// Provider is the backend name.
	Provider string `json:"provider"`

	// SQLite configures the sqlite provider.
	SQLite *SQLiteConfig `json:"sqlite,omitempty"`

	// SQL configures the postgres and mysql providers.
	SQL *SQLConfig `json:"sql,omitempty"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// DBPath is the database file path.
	DBPath string `json:"db_path"`

	// TableName is the memories table name (default "memories").
	TableName string `json:"table_name,omitempty"`
}

// SQLConfig configures a server database backend (postgres or mysql).
type SQLConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`

	// TableName is the memories table name (default "memories").
	TableName string `json:"table_name,omitempty"`

	// SSLMode applies to postgres only (default "disable").
	SSLMode string `json:"ssl_mode,omitempty"`
}

// LLMConfig configures the optional text-generation provider.
//
// Supported providers: "" or "none" (absent), openai, ollama.
type LLMConfig struct {
	// Provider is the provider name.
	Provider string `json:"provider,omitempty"`

	// APIKey is the provider API key (openai).
	APIKey string `json:"api_key,omitempty"`

	// Model is the model name.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty"`
}

// EngineConfig configures the insight engine.
type EngineConfig struct {
	// DetailLevel gates which memory kinds rebuilds compute: minimal,
	// patterns (default), or full. Unrecognized values fall back to
	// patterns.
	DetailLevel string `json:"detail_level,omitempty"`

	// MinOccurrences is the support threshold below which associations are
	// tracked but never surfaced. Default 2.
	MinOccurrences int `json:"min_occurrences,omitempty"`

	// MaxQuestions caps clarifying questions per response. Default 2.
	MaxQuestions int `json:"max_questions,omitempty"`

	// ReliefWindowHours bounds how long after a treatment a lower-severity
	// entry still counts as relief. Default 48.
	ReliefWindowHours int `json:"relief_window_hours,omitempty"`

	// NarratorTimeoutSeconds is the per-call deadline for the optional
	// text-generation collaborator. Default 5.
	NarratorTimeoutSeconds int `json:"narrator_timeout_seconds,omitempty"`
}

// DetailLevelValue returns the parsed detail level, defaulting to patterns.
func (c *EngineConfig) DetailLevelValue() insight.DetailLevel {
	return insight.ParseDetailLevel(c.DetailLevel)
}

// ReliefWindow returns the treatment relief window as a duration.
func (c *EngineConfig) ReliefWindow() time.Duration {
	if c.ReliefWindowHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.ReliefWindowHours) * time.Hour
}

// NarratorTimeout returns the narrator deadline as a duration.
func (c *EngineConfig) NarratorTimeout() time.Duration {
	if c.NarratorTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.NarratorTimeoutSeconds) * time.Second
}

// Validate checks that the configuration names a known storage provider
// and, when an LLM provider is set, a known one.
func (c *Config) Validate() error {
	switch c.Store.Provider {
	case "", "sqlite", "postgres", "mysql":
	default:
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	switch c.LLM.Provider {
	case "", "none", "openai", "ollama":
	default:
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables,
// loading a .env file first if one is found (searching up to five
// directory levels up).
//
// Recognized variables:
//   - STORE_PROVIDER (sqlite, postgres, mysql; default sqlite)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_DATABASE, POSTGRES_TABLE, POSTGRES_SSLMODE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD,
//     MYSQL_DATABASE, MYSQL_TABLE
//   - LLM_PROVIDER (none, openai, ollama; default none), LLM_API_KEY,
//     LLM_MODEL, LLM_BASE_URL
//   - MEMORY_DETAIL_LEVEL, MIN_OCCURRENCES, MAX_QUESTIONS,
//     RELIEF_WINDOW_HOURS, NARRATOR_TIMEOUT_SECONDS
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	config := &Config{
		Store: StoreConfig{
			Provider: getEnvOrDefault("STORE_PROVIDER", "sqlite"),
		},
		LLM: LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "none"),
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    os.Getenv("LLM_MODEL"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		},
		Engine: EngineConfig{
			DetailLevel:            getEnvOrDefault("MEMORY_DETAIL_LEVEL", "patterns"),
			MinOccurrences:         getEnvInt("MIN_OCCURRENCES", 2),
			MaxQuestions:           getEnvInt("MAX_QUESTIONS", 2),
			ReliefWindowHours:      getEnvInt("RELIEF_WINDOW_HOURS", 48),
			NarratorTimeoutSeconds: getEnvInt("NARRATOR_TIMEOUT_SECONDS", 5),
		},
	}

	switch config.Store.Provider {
	case "postgres":
		config.Store.SQL = &SQLConfig{
			Host:      getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:      getEnvInt("POSTGRES_PORT", 5432),
			User:      getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password:  os.Getenv("POSTGRES_PASSWORD"),
			DBName:    getEnvOrDefault("POSTGRES_DATABASE", "symlog"),
			TableName: getEnvOrDefault("POSTGRES_TABLE", "memories"),
			SSLMode:   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		config.Store.SQL = &SQLConfig{
			Host:      getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			Port:      getEnvInt("MYSQL_PORT", 3306),
			User:      getEnvOrDefault("MYSQL_USER", "root"),
			Password:  os.Getenv("MYSQL_PASSWORD"),
			DBName:    getEnvOrDefault("MYSQL_DATABASE", "symlog"),
			TableName: getEnvOrDefault("MYSQL_TABLE", "memories"),
		}
	default:
		config.Store.SQLite = &SQLiteConfig{
			DBPath:    getEnvOrDefault("SQLITE_PATH", "./symlog.db"),
			TableName: getEnvOrDefault("SQLITE_TABLE", "memories"),
		}
	}

	return config, nil
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}
	return &config, nil
}

// FindEnvFile searches the current directory and up to five parents for a
// .env or .env.example file.
func FindEnvFile() (string, bool) {
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		for _, name := range []string{".env", ".env.example"} {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
