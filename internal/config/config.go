// Package config provides configuration loading and validation for the staffing engine.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// weightSumTolerance allows for float noise when checking the weight sum.
const weightSumTolerance = 1e-9

// ScoringWeights are the weights of the seven fit sub-scores. They must sum
// to 1.0 so the aggregate score stays bounded in [0,1].
type ScoringWeights struct {
	HardSkills   float64 `json:"hard_skills"`
	SoftSkills   float64 `json:"soft_skills"`
	Availability float64 `json:"availability"`
	Timezone     float64 `json:"timezone"`
	Domain       float64 `json:"domain"`
	Reliability  float64 `json:"reliability"`
	Continuity   float64 `json:"continuity"`
}

// Sum returns the total of all seven weights.
func (w ScoringWeights) Sum() float64 {
	return w.HardSkills + w.SoftSkills + w.Availability + w.Timezone +
		w.Domain + w.Reliability + w.Continuity
}

// FitParams are the fixed sub-score values used where the model is binary or
// a fallback is needed. Configurable rather than hard-coded business truth.
type FitParams struct {
	TimezonePartial     float64 `json:"timezone_partial"`
	TimezoneMismatch    float64 `json:"timezone_mismatch"`
	DomainMatch         float64 `json:"domain_match"`
	DomainNoHistory     float64 `json:"domain_no_history"`
	ContinuityMatch     float64 `json:"continuity_match"`
	ContinuityNone      float64 `json:"continuity_none"`
	DefaultReliability  float64 `json:"default_reliability"`
	NeutralSoftSkills   float64 `json:"neutral_soft_skills"`
	NeutralAvailability float64 `json:"neutral_availability"`
	StandardDayHours    float64 `json:"standard_day_hours"`
}

// RateParams are the scarcity formula constants: every ScarcityStep open
// requests for a role add ScarcityIncrement to the multiplier, capped at
// ScarcityCap.
type RateParams struct {
	ScarcityStep      float64 `json:"scarcity_step"`
	ScarcityIncrement float64 `json:"scarcity_increment"`
	ScarcityCap       float64 `json:"scarcity_cap"`
}

// Config is the engine configuration. All fields default to the documented
// values; a JSON file may override them.
type Config struct {
	Weights ScoringWeights `json:"weights"`
	Fit     FitParams      `json:"fit"`
	Rates   RateParams     `json:"rates"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Weights: ScoringWeights{
			HardSkills:   0.35,
			SoftSkills:   0.15,
			Availability: 0.15,
			Timezone:     0.10,
			Domain:       0.10,
			Reliability:  0.10,
			Continuity:   0.05,
		},
		Fit: FitParams{
			TimezonePartial:     0.6,
			TimezoneMismatch:    0.2,
			DomainMatch:         0.8,
			DomainNoHistory:     0.2,
			ContinuityMatch:     0.8,
			ContinuityNone:      0.2,
			DefaultReliability:  0.8,
			NeutralSoftSkills:   0.5,
			NeutralAvailability: 0.5,
			StandardDayHours:    8,
		},
		Rates: RateParams{
			ScarcityStep:      5,
			ScarcityIncrement: 0.1,
			ScarcityCap:       1.3,
		},
	}
}

// Load reads a JSON config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return cfg, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("config error: scoring weights must sum to 1.0, got %v", c.Weights.Sum())
	}

	unit := map[string]float64{
		"timezone_partial":     c.Fit.TimezonePartial,
		"timezone_mismatch":    c.Fit.TimezoneMismatch,
		"domain_match":         c.Fit.DomainMatch,
		"domain_no_history":    c.Fit.DomainNoHistory,
		"continuity_match":     c.Fit.ContinuityMatch,
		"continuity_none":      c.Fit.ContinuityNone,
		"default_reliability":  c.Fit.DefaultReliability,
		"neutral_soft_skills":  c.Fit.NeutralSoftSkills,
		"neutral_availability": c.Fit.NeutralAvailability,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("config error: '%s' must be in [0,1], got %v", name, v)
		}
	}

	if c.Fit.StandardDayHours <= 0 {
		return fmt.Errorf("config error: 'standard_day_hours' must be positive")
	}
	if c.Rates.ScarcityStep <= 0 {
		return fmt.Errorf("config error: 'scarcity_step' must be positive")
	}
	if c.Rates.ScarcityIncrement < 0 {
		return fmt.Errorf("config error: 'scarcity_increment' must be non-negative")
	}
	if c.Rates.ScarcityCap < 1 {
		return fmt.Errorf("config error: 'scarcity_cap' must be at least 1")
	}
	return nil
}
