package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/rest"
)

func newBoardsCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List the boards known to the history API",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := cfg.restClient()
			if err != nil {
				return err
			}
			return listBoards(cmd.Context(), api, cmd.OutOrStdout())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create [name...]",
		Short: "Register a new board and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := cfg.restClient()
			if err != nil {
				return err
			}
			info, err := api.CreateBoard(cmd.Context(), rest.CreateBoardRequest{Name: strings.Join(args, " "), ID: cfg.board})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.ID)
			return nil
		},
	})
	return cmd
}

func (c *Config) restClient() (*rest.Client, error) {
	if c.rest == "" {
		return nil, errors.New("--rest is required")
	}
	api := rest.NewClient(c.rest)
	api.SetToken(c.token)
	return api, nil
}

func listBoards(ctx context.Context, api *rest.Client, stdout io.Writer) error {
	boards, err := api.ListBoards(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, b := range boards {
		created := "-"
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, created)
	}
	return w.Flush()
}
