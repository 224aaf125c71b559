// wavesim 无界面运行波次模拟，定期输出统计
//
// 用法：
//
//	go run ./cmd/wavesim -duration 2m
//	go run ./cmd/wavesim -realtime -level data/levels/garden.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/game"
	"github.com/gonewx/lanewave/pkg/systems"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type options struct {
	configPath  string
	levelPath   string
	duration    time.Duration
	reportEvery time.Duration
	realtime    bool
	seed        int64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config/app.toml", "runtime config (TOML)")
	flag.StringVar(&opts.levelPath, "level", "", "level file, overrides [level] path in the config")
	flag.DurationVar(&opts.duration, "duration", time.Minute, "simulated time to run, 0 runs until interrupted (realtime only)")
	flag.DurationVar(&opts.reportEvery, "report", 5*time.Second, "simulated time between stats reports")
	flag.BoolVar(&opts.realtime, "realtime", false, "pace steps with the wall clock")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed, overrides the config when non-zero")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "wavesim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.duration <= 0 && !opts.realtime {
		return errors.New("duration must be positive in batch mode")
	}

	cfg, err := config.LoadAppConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		cfg.Simulation.Seed = opts.seed
	}
	levelPath := cfg.Level.Path
	if opts.levelPath != "" {
		levelPath = opts.levelPath
	}

	logger, err := game.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	sess, err := game.OpenSession(cfg, levelPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to save progress", zap.Error(err))
		}
	}()
	sess.Progress.Attach(sess.Simulation.Bus)

	r := &runner{
		sim:         sess.Simulation,
		tick:        cfg.Simulation.TickDuration(),
		duration:    opts.duration,
		reportEvery: opts.reportEvery,
		realtime:    opts.realtime,
	}
	reports := make(chan systems.Stats, 1)

	g, gctx := errgroup.WithContext(ctx)

	// 模拟循环（唯一访问模拟状态的 goroutine）
	g.Go(func() error {
		defer close(reports)
		return r.run(gctx, reports)
	})

	// 统计输出
	g.Go(func() error {
		for stats := range reports {
			logStats(logger, "simulation stats", stats)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logStats(logger, "simulation finished", sess.Simulation.Stats())
	return nil
}

func logStats(logger *zap.Logger, msg string, stats systems.Stats) {
	logger.Info(msg,
		zap.Float64("elapsed", stats.Elapsed),
		zap.Int64("ticks", stats.Ticks),
		zap.Int("wave", stats.Wave),
		zap.Stringer("phase", stats.Phase),
		zap.Int("active", stats.ActiveAgents),
		zap.Int("spawned", stats.TotalSpawned),
		zap.Int("arrived", stats.Arrived),
		zap.Int("failures", stats.Failures))
}
