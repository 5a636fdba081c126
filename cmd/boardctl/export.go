package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

func newExportCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Render a board's stroke history to --out",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return export(cmd.Context(), cfg)
		},
	}
}

func export(ctx context.Context, cfg *Config) error {
	if cfg.out == "" {
		return errors.New("--out is required")
	}
	id, err := cfg.boardID()
	if err != nil {
		return err
	}
	if id == "" {
		return errors.New("--board or --page is required")
	}

	api, err := cfg.restClient()
	if err != nil {
		return err
	}
	records, err := api.GetStrokes(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch stroke history: %w", err)
	}

	out, err := newOutput(cfg.out, cfg.width, cfg.height)
	if err != nil {
		return err
	}
	drawn, skipped := render(out.surface, id, records)
	if skipped > 0 {
		logf(cfg, "skipped %d unusable strokes", skipped)
	}
	if err := out.save(cfg.out); err != nil {
		return err
	}
	logf(cfg, "wrote %d strokes of board %q to %s", drawn, id, cfg.out)
	return nil
}

// render replays records for board onto s without emitting anything.
func render(s stroke.Surface, board string, records []stroke.Record) (drawn, skipped int) {
	session := stroke.NewSession(s, nil, stroke.WithBoard(board))
	for _, r := range records {
		if err := session.Apply(r); err != nil {
			skipped++
			continue
		}
		drawn++
	}
	return drawn, skipped
}
