// sandbox drives the ECS runtime with a small set of demo systems.
//
// Usage:
//
//	sandbox run                - Run the frame loop until interrupted
//	sandbox run --frames 120   - Run a fixed number of frames and exit
//	sandbox snapshot           - Print a YAML snapshot after N frames
//
// Global flags:
//
//	--config <path>  - TOML or YAML config file
//	--fps <rate>     - Override runtime.frame_rate
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/ecs/internal/config"
	"github.com/zeusync/ecs/internal/core/observability/metrics"
	"github.com/zeusync/ecs/internal/core/system"
	"github.com/zeusync/ecs/internal/injector"
	"github.com/zeusync/ecs/internal/sandbox"
)

var (
	flagConfig string
	flagFPS    int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sandbox",
	Short:         "Drive the ECS runtime with demo systems",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a TOML or YAML config file")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate override (0 keeps the config value)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagFPS > 0 {
		cfg.Runtime.FrameRate = flagFPS
	}
	return cfg, cfg.Validate()
}

// buildWorld assembles a populated world from cfg.
func buildWorld(cfg *config.Config) (*system.World, *sandbox.Systems, error) {
	w, err := injector.InitializeWorld(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build world: %w", err)
	}
	systems, err := sandbox.Install(w)
	if err != nil {
		return nil, nil, err
	}
	if _, err = sandbox.Populate(w); err != nil {
		return nil, nil, err
	}
	if cfg.Runtime.Observe {
		w.EnableMetrics(metrics.NewCollector())
	}
	w.ApplyConfig(cfg)
	return w, systems, nil
}
