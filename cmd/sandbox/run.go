package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/ecs/internal/config"
	"github.com/zeusync/ecs/internal/core/observability/log"
	"github.com/zeusync/ecs/internal/core/observability/metrics"
	"github.com/zeusync/ecs/internal/core/system"
)

var (
	flagFrames int
	flagWatch  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the frame loop",
	Long: `Run the sandbox world at the configured frame rate.

With --frames the loop stops after that many frames. Otherwise it runs
until SIGINT or SIGTERM. With --watch and --config, edits to the config
file are applied between frames.

Examples:
  sandbox run
  sandbox run --frames 300 --fps 120
  sandbox run --config ./sandbox.toml --watch`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

func init() {
	runCmd.Flags().IntVar(&flagFrames, "frames", 0, "Stop after this many frames (0 runs until interrupted)")
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the config file on change")
}

func runSandbox(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w, systems, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	logger := w.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	reloads := make(chan *config.Config, 1)

	if flagWatch && flagConfig != "" {
		g.Go(func() error {
			return config.Watch(ctx, flagConfig, logger, func(next *config.Config) {
				select {
				case reloads <- next:
				case <-ctx.Done():
				}
			})
		})
	}

	g.Go(func() error {
		defer stop()
		return drive(ctx, w, cfg.Runtime.FrameRate, flagFrames, reloads)
	})

	err = g.Wait()
	err = multierr.Append(err, w.Shutdown())
	logger.Info("sandbox finished",
		log.Uint64("frames", w.Frame()),
		log.Int("moved", systems.Movement.Moved()),
		log.Int("healed", systems.Regen.Healed()),
		log.Int("reaped", len(systems.Reaper.Reaped())),
	)
	if c := w.Metrics(); c != nil {
		metrics.LogSummary(logger, c)
	}
	return err
}

// drive steps w on a ticker. Config reloads are applied between frames so
// the world is only touched from this goroutine.
func drive(ctx context.Context, w *system.World, fps, frames int, reloads <-chan *config.Config) error {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for frames <= 0 || w.Frame() < uint64(frames) {
		select {
		case <-ctx.Done():
			return nil
		case next := <-reloads:
			w.ApplyConfig(next)
			if next.Runtime.FrameRate != fps {
				fps = next.Runtime.FrameRate
				ticker.Reset(time.Second / time.Duration(fps))
			}
		case <-ticker.C:
			if err := w.Step(); err != nil {
				w.Logger().Warn("frame finished with errors", log.Uint64("frame", w.Frame()), log.Error(err))
			}
		}
	}
	return nil
}
