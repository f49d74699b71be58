package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradecore/internal/logging"
)

// Env holds the process environment settings
type Env struct {
	LogLevel       string
	LogFormat      string
	Verbosity      string
	SettingsPath   string
	FearGreedURL   string
	TwelveAPIKey   string
	RequestTimeout time.Duration
}

// LoadEnv reads environment variables, loading a .env file first if one exists
func LoadEnv() *Env {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	return &Env{
		LogLevel:       getEnvWithDefault("LOG_LEVEL", ""),
		LogFormat:      getEnvWithDefault("LOG_FORMAT", ""),
		Verbosity:      getEnvWithDefault("VERBOSITY", ""),
		SettingsPath:   getEnvWithDefault("SETTINGS_PATH", ""),
		FearGreedURL:   getEnvWithDefault("FEAR_GREED_URL", ""),
		TwelveAPIKey:   os.Getenv("TWELVE_API_KEY"),
		RequestTimeout: time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 0)) * time.Second,
	}
}

// Apply overrides settings with the environment values that are set. A debug or trace
// LOG_LEVEL without VERBOSITY also switches verbosity to verbose.
func (e *Env) Apply(s *Settings) {
	if e.LogLevel != "" {
		s.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		s.Log.Format = e.LogFormat
	}
	switch {
	case e.Verbosity != "":
		s.Log.Verbosity = logVerbosity(e.Verbosity)
	case e.LogLevel == "debug" || e.LogLevel == "trace":
		// verbosity caps the level, so a debug LOG_LEVEL alone would still log at info
		s.Log.Verbosity = logging.Verbose
	}
	if e.FearGreedURL != "" {
		s.Sentiment.URL = e.FearGreedURL
	}
	if e.RequestTimeout > 0 {
		s.Sentiment.Timeout = e.RequestTimeout
	}
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
