package season

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/rally/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func newRunner(cfg Config) *Runner {
	r, err := NewRunner(cfg)
	So(err, ShouldBeNil)
	return r
}

func totalRating(rep *Report) float64 {
	var sum float64
	for _, c := range rep.Contestants {
		sum += c.Rating
	}
	return sum
}

func TestConfigValidate(t *testing.T) {
	Convey("Given season configs", t, func() {
		Convey("The defaults should be valid", func() {
			So(DefaultConfig().Validate(), ShouldBeNil)
		})

		Convey("Invalid fields should be rejected", func() {
			cases := []func(*Config){
				func(c *Config) { c.PoolSize = 0 },
				func(c *Config) { c.SkillMin = 0 },
				func(c *Config) { c.SkillMax = c.SkillMin - 1 },
				func(c *Config) { c.SurveyNoise = -0.1 },
				func(c *Config) { c.Rounds = -1 },
				func(c *Config) { c.NewContestantProbability = 1.5 },
				func(c *Config) { c.NewThreshold = -1 },
				func(c *Config) { c.KFactors[scoring.Game] = 0 },
				func(c *Config) { c.Modes = []scoring.Granularity{scoring.Granularity(9)} },
			}
			for _, mutate := range cases {
				cfg := DefaultConfig()
				mutate(&cfg)
				err := cfg.Validate()
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)

				_, err = NewRunner(cfg)
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			}
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a default season", t, func() {
		r := newRunner(DefaultConfig())

		Convey("When it runs", func() {
			rep, err := r.Run(ctx, "s1", 7)
			So(err, ShouldBeNil)

			Convey("Then every round should be accounted for", func() {
				So(rep.ID, ShouldEqual, "s1")
				So(rep.Seed, ShouldEqual, 7)
				So(rep.Rounds, ShouldEqual, DefaultRounds)
				So(rep.Played+rep.Skipped(), ShouldEqual, rep.Rounds)
				So(rep.Played, ShouldBeGreaterThan, 0)

				var byMode int
				for _, n := range rep.ByGranularity {
					byMode += n
				}
				So(byMode, ShouldEqual, rep.Played)
			})

			Convey("Then the pool should have grown by the injected newcomers", func() {
				So(len(rep.Contestants), ShouldEqual, DefaultPoolSize+rep.Injected)
				So(rep.Pool().Len(), ShouldEqual, len(rep.Contestants))
				So(rep.ColdStartFallbacks, ShouldBeLessThanOrEqualTo, rep.Injected)
			})

			Convey("Then generated contestants should respect the skill range", func() {
				for _, c := range rep.Contestants {
					So(c.Skill, ShouldBeBetweenOrEqual, DefaultSkillMin, DefaultSkillMax)
					So(math.Abs(c.SurveyRating-float64(c.Skill)/10), ShouldBeLessThanOrEqualTo, DefaultSurveyNoise)
				}
			})

			Convey("Then the same seed should replay the same season", func() {
				again, err := r.Run(ctx, "s1", 7)
				So(err, ShouldBeNil)
				So(again.Contestants, ShouldResemble, rep.Contestants)
				So(again.Played, ShouldEqual, rep.Played)
				So(again.Injected, ShouldEqual, rep.Injected)
			})

			Convey("Then a different seed should give a different season", func() {
				other, err := r.Run(ctx, "s2", 8)
				So(err, ShouldBeNil)
				So(other.Contestants, ShouldNotResemble, rep.Contestants)
			})
		})
	})

	Convey("Given a closed league of established contestants", t, func() {
		cfg := DefaultConfig()
		cfg.NewContestantProbability = 0
		cfg.NewThreshold = 0

		Convey("When it runs", func() {
			rep, err := newRunner(cfg).Run(ctx, "closed", 3)
			So(err, ShouldBeNil)

			Convey("Then rating should be conserved", func() {
				So(rep.Injected, ShouldEqual, 0)
				So(len(rep.Contestants), ShouldEqual, cfg.PoolSize)

				var provisional float64
				for _, c := range rep.Contestants {
					provisional += 1000 + float64(c.Skill-45)*200
				}
				So(totalRating(rep), ShouldAlmostEqual, provisional, 1e-6)
			})

			Convey("Then every played match should count as experience", func() {
				var recorded, won, lost int
				for _, c := range rep.Contestants {
					recorded += c.Recorded
					won += c.MatchesWon
					lost += c.MatchesLost
				}
				So(recorded, ShouldEqual, 2*rep.Played)
				So(won, ShouldEqual, rep.Played)
				So(lost, ShouldEqual, rep.Played)
			})
		})
	})

	Convey("Given a league that only counts full matches as experience", t, func() {
		cfg := DefaultConfig()
		cfg.NewContestantProbability = 0
		cfg.CountContinuous = false
		cfg.Modes = []scoring.Granularity{scoring.Point}

		Convey("When it runs", func() {
			rep, err := newRunner(cfg).Run(ctx, "points", 11)
			So(err, ShouldBeNil)

			Convey("Then nothing should be recorded", func() {
				So(rep.ByGranularity, ShouldResemble, map[string]int{"point": rep.Played})
				for _, c := range rep.Contestants {
					So(c.Recorded, ShouldEqual, 0)
				}
			})
		})
	})

	Convey("Given a league where every match brings a newcomer", t, func() {
		cfg := DefaultConfig()
		cfg.Rounds = 50
		cfg.NewContestantProbability = 1

		Convey("When it runs", func() {
			rep, err := newRunner(cfg).Run(ctx, "growth", 5)
			So(err, ShouldBeNil)

			Convey("Then every played round should add one contestant", func() {
				So(rep.Injected, ShouldEqual, rep.Played)
				So(len(rep.Contestants), ShouldEqual, cfg.PoolSize+rep.Played)
			})
		})
	})

	Convey("Given a league of one", t, func() {
		cfg := DefaultConfig()
		cfg.PoolSize = 1
		cfg.Rounds = 30

		Convey("When it runs", func() {
			rep, err := newRunner(cfg).Run(ctx, "solo", 1)
			So(err, ShouldBeNil)

			Convey("Then every round should be a skipped self-match", func() {
				So(rep.SkippedSelf, ShouldEqual, cfg.Rounds)
				So(rep.Played, ShouldEqual, 0)
				So(rep.Contestants[0].Rating, ShouldEqual, 1000+float64(rep.Contestants[0].Skill-45)*200)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("When a season runs", func() {
			rep, err := newRunner(DefaultConfig()).Run(cctx, "cancelled", 1)

			Convey("Then it should stop before the first round", func() {
				So(rep, ShouldBeNil)
				So(errors.Is(err, ErrCancelled), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
