package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	OpenAIAPIKey      string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIProject     string        `mapstructure:"OPENAI_PROJECT"`
	LLMHost           string        `mapstructure:"LLM_HOST"`
	LLMModel          string        `mapstructure:"LLM_MODEL"`
	Temperature       float64       `mapstructure:"TEMPERATURE"`
	DataDir           string        `mapstructure:"DATA_DIR"`
	OutputDir         string        `mapstructure:"OUTPUT_DIR"`
	MaxTurns          int           `mapstructure:"MAX_TURNS"`
	MaxRetries        int           `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds time.Duration `mapstructure:"RETRY_DELAY_SECONDS"`
	ConsecutiveErrors int           `mapstructure:"CONSECUTIVE_ERRORS"`
	LLMRequestTimeout time.Duration `mapstructure:"LLM_REQUEST_TIMEOUT"`
	PreviewRows       int           `mapstructure:"PREVIEW_ROWS"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_PROJECT", "")
	viper.SetDefault("LLM_HOST", "https://api.openai.com")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("TEMPERATURE", 0.2)
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("OUTPUT_DIR", "dest")
	viper.SetDefault("MAX_TURNS", 10)
	viper.SetDefault("MAX_RETRIES", 5)
	viper.SetDefault("RETRY_DELAY_SECONDS", 2)
	viper.SetDefault("CONSECUTIVE_ERRORS", 3)
	viper.SetDefault("LLM_REQUEST_TIMEOUT", 180)
	viper.SetDefault("PREVIEW_ROWS", 5)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.LLMHost = strings.TrimRight(strings.TrimSpace(config.LLMHost), "/")

	// Convert seconds to proper time.Duration
	config.RetryDelaySeconds = config.RetryDelaySeconds * time.Second
	config.LLMRequestTimeout = config.LLMRequestTimeout * time.Second

	// The LLM client makes MaxRetries attempts total; zero would never call.
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}

	return &config
}
