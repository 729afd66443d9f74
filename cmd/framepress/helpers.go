package main

import (
	"context"
	"log/slog"

	"framepress/internal/config"
	"framepress/internal/inspect"
	"framepress/internal/planner"
	"framepress/internal/scan"
)

// plannedItem is one scanned file with its probe and plan resolved.
type plannedItem struct {
	item  scan.Item
	probe inspect.MediaProbe
	plan  planner.Plan
}

// planItems walks the input tree and resolves a plan for every file.
// Non-video files carry a zero probe and plan; they are mirrored by copy.
// The only error surfaced is a fatal one (missing ffprobe, unreadable
// input root).
func planItems(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]plannedItem, error) {
	items, err := scan.New(cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.IsVideoPath).Walk()
	if err != nil {
		return nil, err
	}

	inspector := inspect.New(cfg.FFprobeBinary(), logger)
	policy := planner.PolicyFromConfig(cfg.Encoding)

	planned := make([]plannedItem, 0, len(items))
	for _, item := range items {
		entry := plannedItem{item: item}
		if item.Kind == scan.KindVideo {
			probe, err := inspector.Probe(ctx, item.Input)
			if err != nil {
				return nil, err
			}
			entry.probe = probe
			entry.plan = planner.Build(probe, policy)
		}
		planned = append(planned, entry)
	}
	return planned, nil
}
