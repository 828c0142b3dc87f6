package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lestrrat/go-admission-control/admission"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and print per-second snapshots",
	Long: `Run a simulation in which every worker owns one admission controller.

Each simulated second a worker records --rps outcomes, failing the given
ratio of them, then reports what its controller sees. Flags can also be
set through ADMSIM_* environment variables, e.g. ADMSIM_FAILURE_RATIO.`,
	RunE: runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.Int("workers", 2, "number of workers, each with its own controller")
	f.Int("duration", 60, "simulated seconds")
	f.Int("rps", 100, "outcomes recorded per worker per second")
	f.Float64("failure-ratio", 0, "ratio of recorded outcomes that fail (0 to 1)")
	f.Int("idle-after", 0, "stop recording after this many seconds (0 never stops)")
	f.Duration("window", admission.DefaultSamplingWindow, "sampling window")
	f.Int("every", 1, "print every Nth second")
	_ = cfg.BindPFlags(f)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cfg.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sc := simConfig{
		Workers:      cfg.GetInt("workers"),
		Duration:     cfg.GetInt("duration"),
		RPS:          cfg.GetInt("rps"),
		FailureRatio: cfg.GetFloat64("failure-ratio"),
		IdleAfter:    cfg.GetInt("idle-after"),
		Window:       cfg.GetDuration("window"),
	}

	logger.Info("starting simulation",
		zap.Int("workers", sc.Workers),
		zap.Int("duration", sc.Duration),
		zap.Int("rps", sc.RPS),
		zap.Float64("failure_ratio", sc.FailureRatio),
		zap.Duration("window", sc.Window),
	)

	snaps, err := simulate(cmd.Context(), sc, logger)
	if err != nil {
		return err
	}

	render(cmd.OutOrStdout(), snaps, cfg.GetInt("every"))
	logger.Info("simulation finished", zap.Int("snapshots", len(snaps)))
	return nil
}
