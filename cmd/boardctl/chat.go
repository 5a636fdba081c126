package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard"
)

const sendTimeout = 10 * time.Second

func newChatCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message...>",
		Short: "Post one chat message to a board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return oneShot(cmd.Context(), cfg, func(ctx context.Context, c *whiteboard.Client, board string) error {
				return c.SendChat(ctx, board, text)
			})
		},
	}
}

func newClearCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Wipe a board for every participant",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return oneShot(cmd.Context(), cfg, func(ctx context.Context, c *whiteboard.Client, board string) error {
				return c.ClearBoard(ctx, board)
			})
		},
	}
}

// oneShot connects, joins the board, runs send and waits for the queued
// events to reach the server before closing.
func oneShot(ctx context.Context, cfg *Config, send func(context.Context, *whiteboard.Client, string) error) error {
	if err := cfg.requireURL(); err != nil {
		return err
	}
	board, err := cfg.boardID()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	cc := cfg.clientConfig()
	cc.AutoReconnect = false
	client := whiteboard.NewClient(&cc)
	client.SetLogger(sdkLogger(cfg))
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	if err := client.Join(ctx, board); err != nil {
		return err
	}
	if err := send(ctx, client, board); err != nil {
		return err
	}
	if err := client.Flush(ctx); err != nil {
		return err
	}
	logf(cfg, "sent to board %q", board)
	return nil
}
