// cmd/simulate/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/rigid2d/pkg/config"
	"github.com/opd-ai/rigid2d/pkg/engine"
	"github.com/opd-ai/rigid2d/pkg/logging"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	steps := flag.Int("steps", 0, "Number of steps to run (0 = run until SIGINT/SIGTERM)")
	dt := flag.Float64("dt", 16.6667, "Fixed step delta time in milliseconds")
	statInterval := flag.Int("stat-interval", 60, "Log a stats line every N steps")
	flag.Parse()

	if *createDefault {
		if err := config.Save(config.Default(), *configPath); err != nil {
			logger.Error(ctx, "failed to create default configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "created default configuration file", "config_path", *configPath)
		return
	}

	cfg, err := loadOrDefault(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}

	eng, err := engine.FromConfig(cfg)
	if err != nil {
		logger.Error(ctx, "failed to build engine from configuration", err)
		os.Exit(1)
	}
	logger.SubscribeDiagnostics(ctx, eng.Bus())

	logger.Info(ctx, "starting simulation",
		"bodies", len(eng.World.AllBodies()),
		"constraints", len(eng.World.AllConstraints()),
		"position_iterations", cfg.PositionIterations,
		"velocity_iterations", cfg.VelocityIterations,
		"constraint_iterations", cfg.ConstraintIterations,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	run(ctx, logger, eng, *steps, *dt, *statInterval, stop)

	logger.Info(ctx, "simulation stopped", "clock", eng.Clock())
}

func loadOrDefault(ctx context.Context, logger *logging.Logger, path string) (*config.EngineConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "configuration file not found, using defaults", "config_path", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

// run steps the engine until either the requested step count is
// reached (steps > 0) or a shutdown signal arrives, logging a stats
// line every statInterval steps.
func run(ctx context.Context, logger *logging.Logger, eng *engine.Engine, steps int, dt float64, statInterval int, stop <-chan os.Signal) {
	tick := 0
	for steps <= 0 || tick < steps {
		select {
		case <-stop:
			logger.Info(ctx, "received shutdown signal")
			return
		default:
		}

		eng.Update(ctx, dt, 1.0)
		tick++

		if statInterval > 0 && tick%statInterval == 0 {
			logStats(ctx, logger, eng, tick)
		}
	}
}

func logStats(ctx context.Context, logger *logging.Logger, eng *engine.Engine, tick int) {
	sleeping := 0
	bodies := eng.World.AllBodies()
	for _, b := range bodies {
		if b.IsSleeping {
			sleeping++
		}
	}
	logger.Info(ctx, "stats",
		"tick", tick,
		"clock_ms", eng.Clock(),
		"bodies", len(bodies),
		"sleeping", sleeping,
		"active_pairs", len(eng.ActivePairs()),
	)
}
