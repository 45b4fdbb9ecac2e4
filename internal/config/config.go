package config

import (
	"os"
	"strconv"

	"gosof/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds data-file settings
type DataConfig struct {
	// AliasPath is the explicit nuclide-alias override file; it outranks
	// every other alias source.
	AliasPath string
	// DataDir is scanned for nuclide_aliases.csv/.json after the working
	// directory.
	DataDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}

	return &Config{
		Database: *dbConfig,
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Data: loadDataConfig(),
	}, nil
}

// LoadData reads only the data-file settings; the CLI uses this so it never
// requires a database.
func LoadData() DataConfig {
	return loadDataConfig()
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	return &DatabaseConfig{
		URL:          url,
		MaxOpenConns: getEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
	}, nil
}

func loadDataConfig() DataConfig {
	return DataConfig{
		AliasPath: os.Getenv("SOF_ALIAS_PATH"),
		DataDir:   getEnv("SOF_DATA_DIR", "data"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
