package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"framepress/internal/config"
	"framepress/internal/console"
	"framepress/internal/deps"
	"framepress/internal/encoding"
	"framepress/internal/engine"
	"framepress/internal/logging"
	"framepress/internal/scheduler"
)

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Transcode the input tree into the output tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, err := logging.NewFileLogger(
				filepath.Join(cfg.Paths.LogDir, "framepress.log"),
				cfg.Logging.Level,
				cfg.Logging.Format,
			)
			if err != nil {
				return err
			}

			// One run per output tree at a time.
			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, ".framepress.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run is already active for %s", cfg.Paths.OutputDir)
			}
			defer lock.Unlock()

			statuses := deps.CheckBinaries(deps.Requirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}

			engineCLI := engine.NewCLI(engine.WithBinary(cfg.FFmpegBinary()))
			availability, err := engineCLI.Probe(ctx, cfg.Encoding.TargetCodec)
			if err != nil {
				return err
			}
			if !availability.Any() {
				return fmt.Errorf("ffmpeg offers neither %s nor %s; rebuild FFmpeg or change target_codec",
					availability.HardwareEncoder, availability.SoftwareEncoder)
			}

			lanes := scheduler.BuildLanes(availability, cfg.Workers.HardwareLane, cfg.Workers.SoftwareLanes)
			if len(lanes) == 0 {
				return fmt.Errorf("no worker lanes available")
			}

			executor := encoding.New(encoding.Options{
				Engine:              engineCLI,
				TargetCodec:         cfg.Encoding.TargetCodec,
				LogDir:              cfg.Paths.LogDir,
				PollInterval:        cfg.PollInterval(),
				MinReductionPercent: cfg.Encoding.MinReductionPercent,
				Logger:              logger,
			})

			// Banner lines go through the console so interactive mode
			// keeps them in the scrolling region below the lane rows.
			out := cmd.OutOrStdout()
			cons := console.New(out, logger, len(lanes))
			cons.Start()
			cons.Println(fmt.Sprintf("Scanning %s", cfg.Paths.InputDir))
			planned, err := planItems(ctx, cfg, logger)
			if err != nil {
				cons.Stop()
				return err
			}
			if len(planned) == 0 {
				cons.Stop()
				fmt.Fprintln(out, "No input files found.")
				return nil
			}

			jobs := make([]encoding.Job, 0, len(planned))
			for _, entry := range planned {
				jobs = append(jobs, encoding.NewJob(entry.item, entry.probe, entry.plan))
			}
			cons.Println(laneSummary(cfg, lanes))

			tally, runErr := scheduler.New(executor, lanes, cons, logger).Run(ctx, jobs)
			cons.Stop()

			fmt.Fprintln(out, tally.Render())
			if runErr != nil {
				fmt.Fprintf(out, "Run stopped early: %d of %d files completed.\n", tally.Total(), len(jobs))
				return runErr
			}
			return nil
		},
	}
}

func laneSummary(cfg *config.Config, lanes []scheduler.Lane) string {
	hardware := 0
	software := 0
	for _, lane := range lanes {
		if lane.Variant == engine.VariantHardware {
			hardware++
		} else {
			software++
		}
	}
	return fmt.Sprintf("Encoding to %s with %d hardware and %d software lanes",
		cfg.Encoding.TargetCodec, hardware, software)
}
