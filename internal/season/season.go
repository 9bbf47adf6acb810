// Package season drives one simulated league season: rounds of weighted
// matchmaking, scored matches, Elo updates and newcomers joining mid-season.
//
// A season owns its pool and random source. Nothing is shared between
// seasons, so any number of them may run in parallel.
package season

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/rally/internal/domain/coldstart"
	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/match"
	"github.com/okian/rally/internal/domain/matchmaking"
	"github.com/okian/rally/internal/domain/rating"
	"github.com/okian/rally/internal/domain/scoring"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

const (
	// cancelCheckInterval is how many rounds run between context checks.
	cancelCheckInterval = 64
	seedMix             = 0x9e3779b97f4a7c15
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets the logger used for round and season events.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// Runner plays seasons with a fixed configuration.
type Runner struct {
	cfg Config
	log logger.Logger
}

// NewRunner validates cfg and creates a Runner.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// NewSource returns the deterministic random source used for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// league is the per-season state.
type league struct {
	cfg       Config
	rng       *rand.Rand
	pool      *contestant.Pool
	picker    *matchmaking.Picker
	scorer    *scoring.Scorer
	engine    *rating.Engine
	estimator *coldstart.Estimator
	report    *Report
	log       logger.Logger
}

// Run plays one season seeded with seed. The context is checked between
// rounds; a match in progress always completes.
func (r *Runner) Run(ctx context.Context, id string, seed uint64) (*Report, error) {
	start := time.Now()
	rng := NewSource(seed)
	l := &league{
		cfg:    r.cfg,
		rng:    rng,
		pool:   contestant.NewPool(),
		picker: matchmaking.NewPicker(rng),
		scorer: scoring.NewScorer(match.NewSimulator(rng), rng),
		engine: rating.NewEngine(
			rating.WithKTable(r.cfg.KFactors),
			rating.WithMultipliers(r.cfg.Multipliers),
			rating.WithNewThreshold(r.cfg.NewThreshold),
			rating.WithCountContinuous(r.cfg.CountContinuous),
		),
		estimator: coldstart.NewEstimator(coldstart.WithMinRecorded(r.cfg.NewThreshold)),
		report: &Report{
			ID:            id,
			Seed:          seed,
			ByGranularity: make(map[string]int, len(scoring.Granularities())),
		},
		log: r.log.With(logger.String("season", id)),
	}

	for range r.cfg.PoolSize {
		if _, err := l.addContestant(); err != nil {
			return nil, fmt.Errorf("seed pool: %w", err)
		}
	}

	for round := range r.cfg.Rounds {
		if round%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w after %d rounds: %w", ErrCancelled, round, err)
			}
		}
		if err := l.playRound(ctx); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		l.report.Rounds++
	}

	l.report.Duration = time.Since(start)
	l.report.Contestants = l.pool.Snapshot()
	l.report.pool = l.pool

	l.log.Info(ctx, "season complete",
		logger.Int("rounds", l.report.Rounds),
		logger.Int("played", l.report.Played),
		logger.Int("skipped", l.report.Skipped()),
		logger.Int("injected", l.report.Injected),
		logger.Int("contestants", l.pool.Len()),
		logger.Duration("duration", l.report.Duration),
	)
	return l.report, nil
}

// playRound picks an anchor and an opponent and, unless the round has to be
// skipped, plays and rates one match.
func (l *league) playRound(ctx context.Context) error {
	members := l.pool.Members()
	anchor := members[l.rng.IntN(len(members))]

	opponent, err := l.picker.PickOpponent(members, anchor.Rating)
	if errors.Is(err, matchmaking.ErrNoEligibleOpponent) {
		l.report.SkippedNoOpponent++
		metrics.RecordRoundSkipped(metrics.SkipNoOpponent)
		l.log.Debug(ctx, "round skipped", logger.String("reason", metrics.SkipNoOpponent),
			logger.String("anchor", anchor.ID.String()))
		return nil
	}
	if err != nil {
		return err
	}
	if opponent.ID == anchor.ID {
		l.report.SkippedSelf++
		metrics.RecordRoundSkipped(metrics.SkipSelfMatch)
		l.log.Debug(ctx, "round skipped", logger.String("reason", metrics.SkipSelfMatch),
			logger.String("anchor", anchor.ID.String()))
		return nil
	}

	res := l.scorer.Score(anchor, opponent, l.mode())
	change := l.engine.Apply(anchor, opponent, res)
	l.report.Played++
	l.report.ByGranularity[res.Granularity.String()]++
	metrics.RecordMatch(res.Granularity.String(), change.DeltaA, change.DeltaB)

	if l.rng.Float64() < l.cfg.NewContestantProbability {
		return l.inject(ctx)
	}
	return nil
}

func (l *league) mode() scoring.Granularity {
	if len(l.cfg.Modes) == 0 {
		return l.scorer.Random()
	}
	return l.cfg.Modes[l.rng.IntN(len(l.cfg.Modes))]
}

// inject adds a newcomer whose rating is seeded from similar experienced
// peers, falling back to the provisional rating.
func (l *league) inject(ctx context.Context) error {
	c, err := l.addContestant()
	if err != nil {
		return fmt.Errorf("inject contestant: %w", err)
	}

	estimate, found := l.estimator.Estimate(l.pool.Members(), c)
	c.Rating = estimate
	outcome := metrics.ColdStartPeers
	if !found {
		outcome = metrics.ColdStartFallback
		l.report.ColdStartFallbacks++
	}
	l.report.Injected++
	metrics.RecordContestantInjected()
	metrics.RecordColdStart(outcome)

	l.log.Debug(ctx, "contestant joined",
		logger.String("id", c.ID.String()),
		logger.Int("skill", c.Skill()),
		logger.Float64("survey", c.SurveyRating),
		logger.Float64("rating", c.Rating),
		logger.String("coldstart", outcome),
	)
	return nil
}

// addContestant appends a contestant with a uniform skill in
// [SkillMin, SkillMax] and a survey rating near skill/10.
func (l *league) addContestant() (*contestant.Contestant, error) {
	skill := l.cfg.SkillMin + l.rng.IntN(l.cfg.SkillMax-l.cfg.SkillMin+1)
	survey := float64(skill)/10 + (2*l.rng.Float64()-1)*l.cfg.SurveyNoise
	return l.pool.Add("", skill, survey)
}
