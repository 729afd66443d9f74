package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"framepress/internal/deps"
	"framepress/internal/engine"
)

func newDepsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and encoder availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))

			writer := table.NewWriter()
			writer.SetStyle(table.StyleLight)
			writer.AppendHeader(table.Row{"Tool", "Command", "Status"})
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = status.Detail
				}
				writer.AppendRow(table.Row{status.Name, status.Command, state})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, writer.Render())

			if len(deps.MissingRequired(statuses)) > 0 {
				return fmt.Errorf("required tools are missing")
			}

			availability, err := engine.NewCLI(engine.WithBinary(cfg.FFmpegBinary())).
				Probe(cmd.Context(), cfg.Encoding.TargetCodec)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Hardware encoder (%s): %s\n", availability.HardwareEncoder, yesNo(availability.Hardware))
			fmt.Fprintf(out, "Software encoder (%s): %s\n", availability.SoftwareEncoder, yesNo(availability.Software))
			if !availability.Any() {
				return fmt.Errorf("no usable encoder for target codec %q", cfg.Encoding.TargetCodec)
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "available"
	}
	return "not available"
}
