package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gostatcheck/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig
	Statcheck ExtractionConfig
	GRIM      ExtractionConfig
	AI        AIConfig
	Server    ServerConfig
	Database  DatabaseConfig
	LogLevel  string
}

// AnalysisConfig holds the only settings the checkers themselves see
type AnalysisConfig struct {
	SignificanceLevel float64
	Workers           int
	Runs              int
}

// ExtractionConfig holds per-analyzer segmentation and model settings
type ExtractionConfig struct {
	MaxWords     int
	OverlapWords int
	Model        string
	Temperature  float64
}

// AIConfig holds LLM transport settings
type AIConfig struct {
	OpenAIKey  string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional run store connection
type DatabaseConfig struct {
	URL string
}

// MaxRuns bounds repeated extraction runs
const MaxRuns = 5

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Analysis: loadAnalysisConfig(),
		Statcheck: loadExtractionConfig("STATCHECK", ExtractionConfig{
			MaxWords:     500,
			OverlapWords: 8,
			Model:        "gpt-4o-mini",
			Temperature:  0.0,
		}),
		GRIM: loadExtractionConfig("GRIM", ExtractionConfig{
			MaxWords:     1000,
			OverlapWords: 200,
			Model:        "gpt-4o",
			Temperature:  0.01,
		}),
		AI:       loadAIConfig(),
		Server:   loadServerConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// RequireExtraction reports an error when the LLM extractors cannot be built
func (c *Config) RequireExtraction() error {
	if c.AI.OpenAIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required for document extraction")
	}
	return nil
}

// StorageEnabled reports whether reports should be persisted
func (c *Config) StorageEnabled() bool {
	return c.Database.URL != ""
}

func loadAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SignificanceLevel: getEnvFloatOrDefault("SIGNIFICANCE_LEVEL", 0.05),
		Workers:           getEnvIntOrDefault("WORKERS", runtime.NumCPU()),
		Runs:              getEnvIntOrDefault("RUNS", 1),
	}
}

func loadExtractionConfig(prefix string, defaults ExtractionConfig) ExtractionConfig {
	return ExtractionConfig{
		MaxWords:     getEnvIntOrDefault(prefix+"_MAX_WORDS", defaults.MaxWords),
		OverlapWords: getEnvIntOrDefault(prefix+"_OVERLAP_WORDS", defaults.OverlapWords),
		Model:        getEnvOrDefault(prefix+"_MODEL", defaults.Model),
		Temperature:  getEnvFloatOrDefault(prefix+"_TEMPERATURE", defaults.Temperature),
	}
}

func loadAIConfig() AIConfig {
	return AIConfig{
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL:    os.Getenv("LLM_BASE_URL"),
		Timeout:    time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries: getEnvIntOrDefault("LLM_MAX_RETRIES", 3),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func validateConfig(config *Config) error {
	a := config.Analysis
	if !(a.SignificanceLevel > 0 && a.SignificanceLevel < 1) {
		return errors.ConfigInvalid(fmt.Sprintf("SIGNIFICANCE_LEVEL must be in (0, 1), got %g", a.SignificanceLevel))
	}
	if a.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be at least 1")
	}
	if a.Runs < 1 || a.Runs > MaxRuns {
		return errors.ConfigInvalid(fmt.Sprintf("RUNS must be between 1 and %d", MaxRuns))
	}
	for name, ex := range map[string]ExtractionConfig{"STATCHECK": config.Statcheck, "GRIM": config.GRIM} {
		if ex.MaxWords < 1 {
			return errors.ConfigInvalid(name + "_MAX_WORDS must be positive")
		}
		if ex.OverlapWords < 0 || ex.OverlapWords >= ex.MaxWords {
			return errors.ConfigInvalid(name + "_OVERLAP_WORDS must be smaller than " + name + "_MAX_WORDS")
		}
		if ex.Temperature < 0 || ex.Temperature > 2 {
			return errors.ConfigInvalid(name + "_TEMPERATURE must be in [0, 2]")
		}
	}
	if config.AI.Timeout <= 0 {
		return errors.ConfigInvalid("LLM_TIMEOUT_SECONDS must be positive")
	}
	if config.AI.MaxRetries < 0 {
		return errors.ConfigInvalid("LLM_MAX_RETRIES cannot be negative")
	}
	return nil
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
