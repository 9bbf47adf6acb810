package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/rally/internal/adapters/http/api"
	"github.com/okian/rally/internal/adapters/repository"
	app "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/audit"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
		_ = logger.Init(logger.WithJSON(true))
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		go func() {
			log.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "league run failed", logger.Error(err))
		os.Exit(1)
	}
}

// run simulates cfg.Seasons seasons and logs their standings and audits.
// With an HTTP address set it then serves the standings until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	seasonCfg, err := cfg.SeasonConfig()
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithRetention(cfg.Retention),
		app.WithSeasonConfig(seasonCfg),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	ids := make([]string, 0, cfg.Seasons)
	for i := range cfg.Seasons {
		id, err := svc.Submit(ctx, "", seed+uint64(i))
		if err != nil {
			return fmt.Errorf("submit season %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	log.Info(ctx, "seasons submitted", logger.Int("seasons", len(ids)), logger.Uint64("seed", seed))

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := svc.Wait(waitCtx); err != nil {
		return err
	}

	var failed int
	var auditErr float64
	var audited int
	for _, id := range ids {
		if st, _ := svc.Status(id); st != app.StatusCompleted {
			failed++
			log.Error(ctx, "season did not complete", logger.String("season", id), logger.Error(svc.Failure(id)))
			continue
		}
		sum, err := summarize(ctx, svc, cfg, log, id)
		if err != nil {
			return err
		}
		if sum != nil && len(sum.Pairs) > 0 {
			auditErr += sum.MeanAbsError
			audited++
		}
	}

	fields := []logger.Field{
		logger.Int("seasons", len(ids)),
		logger.Int("failed", failed),
	}
	if audited > 0 {
		fields = append(fields, logger.Float64("meanAbsError", auditErr/float64(audited)))
	}
	log.Info(ctx, "league run complete", fields...)

	if failed > 0 {
		return fmt.Errorf("%d of %d seasons failed", failed, len(ids))
	}

	if cfg.HTTPAddr == "" {
		return nil
	}
	log.Info(ctx, "serving standings", logger.String("addr", cfg.HTTPAddr))
	return metrics.ServeHandler(ctx, cfg.HTTPAddr, api.NewServer(svc, svc).Handler())
}

// summarize logs one season's report, top standings and audit.
func summarize(ctx context.Context, svc *app.Service, cfg *config.Config, log logger.Logger, id string) (*audit.Summary, error) {
	rep, err := svc.Report(ctx, id)
	if errors.Is(err, repository.ErrSeasonNotFound) {
		// Evicted by retention before we got to it.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slogger := log.With(logger.String("season", id))
	rates := audit.WinRates(rep.Contestants, cfg.NewThreshold+1)
	slogger.Info(ctx, "season report",
		logger.Uint64("seed", rep.Seed),
		logger.Int("played", rep.Played),
		logger.Int("skippedSelf", rep.SkippedSelf),
		logger.Int("skippedNoOpponent", rep.SkippedNoOpponent),
		logger.Int("injected", rep.Injected),
		logger.Int("coldStartFallbacks", rep.ColdStartFallbacks),
		logger.Any("byGranularity", rep.ByGranularity),
		logger.Float64("meanWinRate", mean(rates)),
		logger.Duration("duration", rep.Duration),
	)

	top, err := svc.TopN(ctx, id, cfg.TopN)
	if err != nil {
		return nil, err
	}
	for _, e := range top {
		c := e.Contestant
		slogger.Info(ctx, "standing",
			logger.Int("rank", e.Rank),
			logger.String("contestant", c.Name),
			logger.Int("skill", c.Skill),
			logger.Float64("rating", c.Rating),
			logger.Int("won", c.MatchesWon),
			logger.Int("lost", c.MatchesLost),
		)
	}

	if cfg.AuditTrials == 0 {
		return nil, nil
	}
	sum, err := svc.Audit(ctx, id, cfg.AuditTrials)
	if err != nil {
		return nil, err
	}
	slogger.Info(ctx, "season audit",
		logger.Int("pairs", len(sum.Pairs)),
		logger.Int("trials", cfg.AuditTrials),
		logger.Float64("meanAbsError", sum.MeanAbsError),
		logger.Float64("maxAbsError", sum.MaxAbsError),
	)
	return &sum, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
