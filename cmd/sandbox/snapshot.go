package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/ecs/internal/core/storage"
)

var (
	flagSnapshotFrames int
	flagOut            string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print a YAML snapshot of the world after N frames",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().IntVarP(&flagSnapshotFrames, "frames", "n", 10, "Frames to step before capturing")
	snapshotCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write to this file instead of stdout")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w, _, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Shutdown() }()

	for i := 0; i < flagSnapshotFrames; i++ {
		if err = w.Step(); err != nil {
			return fmt.Errorf("frame %d: %w", w.Frame(), err)
		}
	}

	snap, err := storage.CaptureAll(w.Frame(), w.Entities())
	if err != nil {
		return err
	}
	data, err := storage.Encode(snap)
	if err != nil {
		return err
	}
	if flagOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(flagOut, data, 0o644)
}
