// Package config defines process configuration and its loading.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Validation errors wrap ErrInvalidConfig, loading errors ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/rally/internal/domain/rating"
	"github.com/okian/rally/internal/domain/scoring"
	"github.com/okian/rally/internal/season"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// HTTPAddr keeps serving the standings API after the run when set.
	HTTPAddr string `koanf:"http_addr"`

	// Seasons is how many independent seasons to simulate.
	Seasons int `koanf:"seasons"`

	// WorkerCount sets how many seasons run in parallel.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the pending season queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the remembered season IDs.
	DedupeSize int `koanf:"dedupe_size"`

	// Retention caps the seasons whose standings are kept; 0 keeps all.
	Retention int `koanf:"retention"`

	// Seed is the base seed; season i uses Seed+i. Zero picks a time-based seed.
	Seed uint64 `koanf:"seed"`

	// Timeout bounds the whole run.
	Timeout time.Duration `koanf:"timeout"`

	PoolSize    int     `koanf:"pool_size"`
	SkillMin    int     `koanf:"skill_min"`
	SkillMax    int     `koanf:"skill_max"`
	SurveyNoise float64 `koanf:"survey_noise"`
	Rounds      int     `koanf:"rounds"`

	// NewContestantProbability is the chance a newcomer joins after a played round.
	NewContestantProbability float64 `koanf:"new_contestant_probability"`

	// Granularity is a comma separated list of match, set, game, point.
	// Empty draws uniformly from all four each round.
	Granularity string `koanf:"granularity"`

	// KFactors maps granularity names to Elo K factors.
	KFactors map[string]float64 `koanf:"k_factors"`

	NewMultiplier          float64 `koanf:"new_multiplier"`
	ExperiencedMultiplier  float64 `koanf:"experienced_multiplier"`
	NewThreshold           int     `koanf:"new_threshold"`
	CountContinuousMatches bool    `koanf:"count_continuous_matches"`

	// AuditTrials is the number of trial matches per audited pair; 0 skips the audit.
	AuditTrials int `koanf:"audit_trials"`

	// TopN is how many standings rows are logged per season.
	TopN int `koanf:"top_n"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	defaults := season.DefaultConfig()
	k := rating.DefaultKTable()
	m := rating.DefaultMultipliers()

	kf := make(map[string]float64, len(scoring.Granularities()))
	for _, g := range scoring.Granularities() {
		kf[g.String()] = k.K(g)
	}

	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Seasons:                  4,
		WorkerCount:              runtime.NumCPU(),
		QueueSize:                1024,
		DedupeSize:               10_000,
		Timeout:                  5 * time.Minute,
		PoolSize:                 defaults.PoolSize,
		SkillMin:                 defaults.SkillMin,
		SkillMax:                 defaults.SkillMax,
		SurveyNoise:              defaults.SurveyNoise,
		Rounds:                   defaults.Rounds,
		NewContestantProbability: defaults.NewContestantProbability,
		KFactors:                 kf,
		NewMultiplier:            m.New,
		ExperiencedMultiplier:    m.Experienced,
		NewThreshold:             defaults.NewThreshold,
		CountContinuousMatches:   defaults.CountContinuous,
		AuditTrials:              100,
		TopN:                     5,
	}
}

// Modes parses Granularity.
func (c *Config) Modes() ([]scoring.Granularity, error) {
	var out []scoring.Granularity
	for _, part := range strings.Split(c.Granularity, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		g, err := scoring.ParseGranularity(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// SeasonConfig converts the simulation keys into a validated season.Config.
func (c *Config) SeasonConfig() (season.Config, error) {
	modes, err := c.Modes()
	if err != nil {
		return season.Config{}, err
	}
	k, err := rating.KTableFromMap(c.KFactors)
	if err != nil {
		return season.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.NewMultiplier <= 0 || c.ExperiencedMultiplier <= 0 {
		return season.Config{}, fmt.Errorf("%w: multipliers must be positive (new %g, experienced %g)",
			ErrInvalidConfig, c.NewMultiplier, c.ExperiencedMultiplier)
	}

	sc := season.Config{
		PoolSize:                 c.PoolSize,
		SkillMin:                 c.SkillMin,
		SkillMax:                 c.SkillMax,
		SurveyNoise:              c.SurveyNoise,
		Rounds:                   c.Rounds,
		NewContestantProbability: c.NewContestantProbability,
		Modes:                    modes,
		KFactors:                 k,
		Multipliers:              rating.Multipliers{New: c.NewMultiplier, Experienced: c.ExperiencedMultiplier},
		NewThreshold:             c.NewThreshold,
		CountContinuous:          c.CountContinuousMatches,
	}
	if err := sc.Validate(); err != nil {
		return season.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return sc, nil
}

// Validate checks every key.
func (c *Config) Validate() error {
	switch {
	case c.Seasons < 1:
		return fmt.Errorf("%w: seasons must be positive, got %d", ErrInvalidConfig, c.Seasons)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize < c.Seasons:
		return fmt.Errorf("%w: queue_size %d cannot hold %d seasons", ErrInvalidConfig, c.QueueSize, c.Seasons)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.AuditTrials < 0:
		return fmt.Errorf("%w: audit_trials must not be negative, got %d", ErrInvalidConfig, c.AuditTrials)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, c.TopN)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	_, err := c.SeasonConfig()
	return err
}
