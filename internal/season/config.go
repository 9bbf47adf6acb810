package season

import (
	"fmt"

	"github.com/okian/rally/internal/domain/rating"
	"github.com/okian/rally/internal/domain/scoring"
)

// Default season configuration constants.
const (
	DefaultPoolSize                 = 20
	DefaultSkillMin                 = 40
	DefaultSkillMax                 = 50
	DefaultSurveyNoise              = 0.5
	DefaultRounds                   = 400
	DefaultNewContestantProbability = 1.0 / 15
	DefaultNewThreshold             = 5
)

// Config holds everything one season needs besides its seed.
type Config struct {
	PoolSize    int
	SkillMin    int
	SkillMax    int
	SurveyNoise float64
	Rounds      int

	// NewContestantProbability is the chance a played round is followed
	// by a newcomer joining.
	NewContestantProbability float64

	// Modes restricts the granularities drawn per round. Empty means all four.
	Modes []scoring.Granularity

	KFactors        rating.KTable
	Multipliers     rating.Multipliers
	NewThreshold    int
	CountContinuous bool
}

// DefaultConfig returns the league defaults.
func DefaultConfig() Config {
	return Config{
		PoolSize:                 DefaultPoolSize,
		SkillMin:                 DefaultSkillMin,
		SkillMax:                 DefaultSkillMax,
		SurveyNoise:              DefaultSurveyNoise,
		Rounds:                   DefaultRounds,
		NewContestantProbability: DefaultNewContestantProbability,
		KFactors:                 rating.DefaultKTable(),
		Multipliers:              rating.DefaultMultipliers(),
		NewThreshold:             DefaultNewThreshold,
		CountContinuous:          true,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool size %d", ErrInvalidConfig, c.PoolSize)
	case c.SkillMin <= 0:
		return fmt.Errorf("%w: skill min %d", ErrInvalidConfig, c.SkillMin)
	case c.SkillMax < c.SkillMin:
		return fmt.Errorf("%w: skill max %d below min %d", ErrInvalidConfig, c.SkillMax, c.SkillMin)
	case c.SurveyNoise < 0:
		return fmt.Errorf("%w: survey noise %g", ErrInvalidConfig, c.SurveyNoise)
	case c.Rounds < 0:
		return fmt.Errorf("%w: rounds %d", ErrInvalidConfig, c.Rounds)
	case c.NewContestantProbability < 0 || c.NewContestantProbability > 1:
		return fmt.Errorf("%w: new contestant probability %g", ErrInvalidConfig, c.NewContestantProbability)
	case c.NewThreshold < 0:
		return fmt.Errorf("%w: new threshold %d", ErrInvalidConfig, c.NewThreshold)
	}
	for _, k := range c.KFactors {
		if k <= 0 {
			return fmt.Errorf("%w: k factors %v", ErrInvalidConfig, c.KFactors)
		}
	}
	for _, g := range c.Modes {
		if !g.Valid() {
			return fmt.Errorf("%w: granularity %d", ErrInvalidConfig, int(g))
		}
	}
	return nil
}
