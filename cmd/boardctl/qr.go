package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard"
)

func newQRCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "qr",
		Short: "Print or save a QR code that opens the board page",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shareQR(cfg, cmd.OutOrStdout())
		},
	}
}

// shareQR writes a PNG to --out, or draws the code as text when no
// output file is given.
func shareQR(cfg *Config, stdout io.Writer) error {
	if cfg.page == "" {
		return errors.New("--page is required")
	}
	link, err := whiteboard.BoardURL(cfg.page, cfg.board)
	if err != nil {
		return err
	}

	if cfg.out == "" {
		q, err := qrcode.New(link, qrcode.Medium)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, q.ToSmallString(false))
		fmt.Fprintln(stdout, link)
		return nil
	}

	if f, err := formatOf(cfg.out); err != nil || f != formatPNG {
		return fmt.Errorf("QR codes can only be written as .png: %s", cfg.out)
	}
	if err := qrcode.WriteFile(link, qrcode.Medium, cfg.qrSize, cfg.out); err != nil {
		return err
	}
	logf(cfg, "wrote QR code for %s to %s", link, cfg.out)
	return nil
}
