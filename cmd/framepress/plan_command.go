package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"framepress/internal/logging"
	"framepress/internal/planner"
	"framepress/internal/scan"
)

func newPlanCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show per-file decisions without encoding anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			planned, err := planItems(cmd.Context(), cfg, logging.NewNop())
			if err != nil {
				return err
			}
			if len(planned) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No input files found.")
				return nil
			}

			writer := table.NewWriter()
			writer.SetStyle(table.StyleLight)
			writer.AppendHeader(table.Row{"File", "Codec", "Bitrate", "Decision", "Reason"})
			for _, entry := range planned {
				writer.AppendRow(planRow(entry))
			}
			fmt.Fprintln(cmd.OutOrStdout(), writer.Render())
			return nil
		},
	}
}

func planRow(entry plannedItem) table.Row {
	if entry.item.Kind != scan.KindVideo {
		return table.Row{entry.item.RelPath, "-", "-", "copy", "not a video file"}
	}
	codec := entry.probe.Codec
	if codec == "" {
		codec = "unknown"
	}
	bitrate := "unknown"
	if entry.probe.BitRateBps > 0 {
		bitrate = humanize.SI(float64(entry.probe.BitRateBps), "bps")
	}
	decision := string(entry.plan.Mode)
	if entry.plan.Mode != planner.ModeCopy {
		decision = fmt.Sprintf("%s (%d pass)", entry.plan.Mode, entry.plan.PassCount)
	}
	return table.Row{entry.item.RelPath, codec, bitrate, decision, entry.plan.Reason}
}
