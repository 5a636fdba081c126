package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard"
	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

func newWatchCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Join a board, print its chat and mirror its drawing",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

func watch(ctx context.Context, cfg *Config, stdout io.Writer) error {
	if err := cfg.requireURL(); err != nil {
		return err
	}
	id, err := cfg.boardID()
	if err != nil {
		return err
	}
	out, err := newOutput(cfg.out, cfg.width, cfg.height)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	cc := cfg.clientConfig()
	client := whiteboard.NewClient(&cc)
	client.SetLogger(sdkLogger(cfg))
	client.OnError(func(err error) { logf(cfg, "error: %v", err) })
	client.OnStateChanged(func(ev whiteboard.StateEvent) {
		logf(cfg, "connection %s -> %s", ev.OldState, ev.NewState)
	})

	board := whiteboard.NewBoard(client, id, out.surface,
		whiteboard.WithBoardLogger(sdkLogger(cfg)),
		whiteboard.WithChatHandler(func(m whiteboard.ChatMessage) { fmt.Fprintln(stdout, m.String()) }),
		whiteboard.WithClearHandler(func(whiteboard.ClearEvent) { logf(cfg, "board %q cleared", id) }),
	)

	if client.REST != nil && id != "" {
		if err := replayHistory(ctx, cfg, client, board, stdout); err != nil {
			return err
		}
	}

	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	if err := board.Join(ctx); err != nil {
		return err
	}
	logf(cfg, "watching board %q on %s", id, cfg.url)

	<-ctx.Done()

	if cfg.out == "" {
		return nil
	}
	board.Do(func(*stroke.Session) { err = out.save(cfg.out) })
	if err != nil {
		return err
	}
	logf(cfg, "wrote %s", cfg.out)
	return nil
}

// replayHistory paints the stored strokes of the board and prints its
// recent chat before live events start arriving.
func replayHistory(ctx context.Context, cfg *Config, client *whiteboard.Client, board *whiteboard.Board, stdout io.Writer) error {
	records, err := client.REST.GetStrokes(ctx, board.ID())
	if err != nil {
		return fmt.Errorf("fetch stroke history: %w", err)
	}
	skipped := board.Replay(records)
	logf(cfg, "replayed %d strokes (%d skipped)", len(records)-skipped, skipped)

	entries, err := client.REST.GetChat(ctx, board.ID(), whiteboard.DefaultChatLimit)
	if err != nil {
		return fmt.Errorf("fetch chat history: %w", err)
	}
	for _, e := range entries {
		m := whiteboard.ChatMessage{User: e.User, Message: e.Message, Timestamp: e.Timestamp, BoardID: board.ID()}
		if board.Chat().Add(m) {
			fmt.Fprintln(stdout, m.String())
		}
	}
	return nil
}
