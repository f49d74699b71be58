// Package config loads the settings bundle, strategies and process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/tradecore/internal/analysis/market"
	"github.com/Alias1177/tradecore/internal/analysis/technical"
	"github.com/Alias1177/tradecore/internal/api/feargreed"
	"github.com/Alias1177/tradecore/internal/logging"
	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/trading/momentum"
	"github.com/Alias1177/tradecore/internal/trading/risk"
)

var validate = validator.New()

// SentimentConfig selects where the Fear & Greed reading comes from
type SentimentConfig struct {
	Source     string        `yaml:"source" default:"api" validate:"oneof=api static none"`
	URL        string        `yaml:"url" validate:"omitempty,url"`
	Static     float64       `yaml:"static" default:"50" validate:"gte=0,lte=100"`
	Timeout    time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	MaxRetries int           `yaml:"max_retries" default:"3" validate:"gte=0"`
}

// Settings is the full configuration bundle
type Settings struct {
	Log        logging.Config        `yaml:"log"`
	Indicators technical.Params      `yaml:"indicators"`
	Regime     market.DetectorConfig `yaml:"regime"`
	Momentum   momentum.Config       `yaml:"momentum"`
	Sizing     risk.Config           `yaml:"sizing"`
	Sentiment  SentimentConfig       `yaml:"sentiment"`
}

// Default returns settings with every default applied
func Default() (*Settings, error) {
	var s Settings
	if err := defaults.Set(&s); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if s.Sentiment.URL == "" {
		s.Sentiment.URL = feargreed.DefaultURL
	}
	return &s, nil
}

// Load reads settings from a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(b, s); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}
	return s, nil
}

// Validate checks field rules and that the momentum weights sum to 1
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return s.Momentum.Weights.Check()
}

// LoadStrategy reads one strategy definition from YAML
func LoadStrategy(path string) (*model.Strategy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy: %w", err)
	}
	return ParseStrategy(b)
}

// ParseStrategy decodes and validates a strategy
func ParseStrategy(b []byte) (*model.Strategy, error) {
	var st model.Strategy
	if err := yaml.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse strategy: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

func logVerbosity(v string) logging.Verbosity {
	return logging.Verbosity(strings.ToLower(strings.TrimSpace(v)))
}
