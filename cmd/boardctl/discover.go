package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/discovery"
)

func newDiscoverCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List board servers announced on the local network",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return discover(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

func discover(ctx context.Context, cfg *Config, stdout io.Writer) error {
	logf(cfg, "browsing %s for %s", cfg.service, cfg.timeout)
	endpoints, err := discovery.Browse(ctx, cfg.service, cfg.timeout)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		fmt.Fprintln(stdout, "no board servers found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tURL")
	for _, e := range endpoints {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.HostPort(), e.WebSocketURL(""))
	}
	return w.Flush()
}
