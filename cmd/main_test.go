package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func smallConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.Seasons = 3
	cfg.WorkerCount = 2
	cfg.Rounds = 150
	cfg.Seed = 17
	cfg.AuditTrials = 5
	cfg.TopN = 3
	cfg.Timeout = 30 * time.Second
	return cfg
}

func TestRun(t *testing.T) {
	convey.Convey("Given a small league configuration", t, func() {
		ctx := context.Background()
		cfg := smallConfig()

		convey.Convey("When the league runs", func() {
			err := run(ctx, cfg, logger.Nop())

			convey.Convey("Then every season should complete", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the audit is disabled and standings are retained briefly", func() {
			cfg.AuditTrials = 0
			cfg.Retention = 1
			err := run(ctx, cfg, logger.Nop())

			convey.Convey("Then the run should still succeed", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the standings are served after the run", func() {
			cfg.AuditTrials = 0
			cfg.HTTPAddr = "127.0.0.1:0"
			sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			err := run(sctx, cfg, logger.Nop())

			convey.Convey("Then serving should stop cleanly with the context", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the season settings are invalid", func() {
			cfg.SkillMin = 0
			err := run(ctx, cfg, logger.Nop())

			convey.Convey("Then the run should fail before starting", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := run(cctx, cfg, logger.Nop())

			convey.Convey("Then the run should report an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given league settings in the environment", t, func() {
		_ = os.Setenv("RALLY_SEASONS", "2")
		_ = os.Setenv("RALLY_ROUNDS", "80")
		_ = os.Setenv("RALLY_WORKER_COUNT", "2")
		defer func() {
			_ = os.Unsetenv("RALLY_SEASONS")
			_ = os.Unsetenv("RALLY_ROUNDS")
			_ = os.Unsetenv("RALLY_WORKER_COUNT")
		}()

		convey.Convey("Then the loaded configuration should drive a run", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Seasons, convey.ShouldEqual, 2)
			convey.So(cfg.Rounds, convey.ShouldEqual, 80)
			cfg.AuditTrials = 0
			convey.So(run(context.Background(), cfg, logger.Nop()), convey.ShouldBeNil)
		})
	})
}
