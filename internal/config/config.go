package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"anovalab/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Input    InputConfig
	Output   OutputConfig
	Database DatabaseConfig
	Server   ServerConfig
	LogLevel string
}

// AnalysisConfig controls how each measure is analysed
type AnalysisConfig struct {
	Alpha           float64
	RequireBalanced bool
	ExactP          bool
	Concurrency     int
}

// InputConfig controls data ingestion
type InputConfig struct {
	DataFile      string
	SkipMalformed bool
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format  string
	XLSXOut string
}

// DatabaseConfig holds the optional results store connection
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Report formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats the report renderer accepts
var Formats = []string{FormatText, FormatMarkdown, FormatHTML, FormatJSON}

// Load reads configuration from the environment, after loading a .env file
// if one is present, and validates it
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the environment without touching .env
func FromEnv() (*Config, error) {
	config := &Config{
		Analysis: AnalysisConfig{
			Alpha:           getEnvFloatOrDefault("ANOVA_ALPHA", 0.05),
			RequireBalanced: getEnvBoolOrDefault("ANOVA_REQUIRE_BALANCED", false),
			ExactP:          getEnvBoolOrDefault("ANOVA_EXACT_P", false),
			Concurrency:     getEnvIntOrDefault("ANOVA_CONCURRENCY", 4),
		},
		Input: InputConfig{
			DataFile:      getEnvOrDefault("ANOVA_DATA_FILE", ""),
			SkipMalformed: getEnvBoolOrDefault("ANOVA_SKIP_MALFORMED", false),
		},
		Output: OutputConfig{
			Format:  strings.ToLower(getEnvOrDefault("ANOVA_FORMAT", "text")),
			XLSXOut: getEnvOrDefault("ANOVA_XLSX_OUT", ""),
		},
		Database: DatabaseConfig{
			URL:            getEnvOrDefault("DATABASE_URL", ""),
			ConnectTimeout: getEnvDurationOrDefault("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks value ranges; flag overrides should call it again
func (c *Config) Validate() error {
	if !(c.Analysis.Alpha > 0 && c.Analysis.Alpha < 1) {
		return errors.ConfigInvalid("ANOVA_ALPHA must be in (0, 1)")
	}
	if c.Analysis.Concurrency < 1 {
		return errors.ConfigInvalid("ANOVA_CONCURRENCY must be at least 1")
	}
	if !validFormat(c.Output.Format) {
		return errors.ConfigInvalid("ANOVA_FORMAT must be one of " + strings.Join(Formats, ", "))
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
