package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard"
	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/discovery"
)

type Config struct {
	board     string
	duration  time.Duration
	height    int
	out       string
	page      string
	qrSize    int
	reconnect bool
	rest      string
	service   string
	timeout   time.Duration
	token     string
	url       string
	user      string
	verbose   bool
	width     int
}

func (c *Config) validate() error {
	if c.width < 1 || c.height < 1 {
		return fmt.Errorf("invalid canvas size (both dimensions must be positive): %dx%d", c.width, c.height)
	}
	if c.duration < 0 {
		return fmt.Errorf("invalid duration (must not be negative): %s", c.duration)
	}
	if c.out != "" {
		if _, err := formatOf(c.out); err != nil {
			return err
		}
	}
	return nil
}

// boardID returns --board, falling back to the last path segment of --page.
func (c *Config) boardID() (string, error) {
	if c.board != "" || c.page == "" {
		return c.board, nil
	}
	return whiteboard.BoardIDFromURL(c.page)
}

func (c *Config) requireURL() error {
	if c.url == "" {
		return errors.New("--url is required")
	}
	return nil
}

func (c *Config) clientConfig() whiteboard.Config {
	cc := whiteboard.DefaultConfig()
	cc.URL = c.url
	cc.Token = c.token
	cc.User = c.user
	cc.AutoReconnect = c.reconnect
	cc.RESTBaseURL = c.rest
	return cc
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BOARDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "Watch, export and talk to collaborative whiteboards from the command line.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.board, "board", "b", "", "board to join (env: BOARDCTL_BOARD)")
	fs.DurationVarP(&cfg.duration, "duration", "d", 0, "how long to watch, 0 waits for an interrupt (env: BOARDCTL_DURATION)")
	fs.IntVar(&cfg.height, "height", 600, "canvas height in pixels (env: BOARDCTL_HEIGHT)")
	fs.StringVarP(&cfg.out, "out", "o", "", "write the board to a .png, .svg or .pdf file (env: BOARDCTL_OUT)")
	fs.StringVar(&cfg.page, "page", "", "board page URL, used for QR codes and as a fallback board id (env: BOARDCTL_PAGE)")
	fs.IntVar(&cfg.qrSize, "qr-size", 320, "QR code size in pixels (env: BOARDCTL_QR_SIZE)")
	fs.BoolVar(&cfg.reconnect, "reconnect", false, "reconnect automatically on connection loss (env: BOARDCTL_RECONNECT)")
	fs.StringVar(&cfg.rest, "rest", "", "base URL of the board history API (env: BOARDCTL_REST)")
	fs.StringVar(&cfg.service, "service", discovery.DefaultService, "mDNS service to browse for (env: BOARDCTL_SERVICE)")
	fs.DurationVar(&cfg.timeout, "timeout", discovery.DefaultTimeout, "how long to wait for mDNS answers (env: BOARDCTL_TIMEOUT)")
	fs.StringVarP(&cfg.token, "token", "t", "", "bearer token sent to the server (env: BOARDCTL_TOKEN)")
	fs.StringVarP(&cfg.url, "url", "u", "", "websocket URL of the board server (env: BOARDCTL_URL)")
	fs.StringVar(&cfg.user, "user", whiteboard.DefaultUser, "name shown next to chat messages (env: BOARDCTL_USER)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BOARDCTL_VERBOSE)")
	fs.IntVar(&cfg.width, "width", 800, "canvas width in pixels (env: BOARDCTL_WIDTH)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newWatchCmd(cfg),
		newExportCmd(cfg),
		newChatCmd(cfg),
		newClearCmd(cfg),
		newQRCmd(cfg),
		newDiscoverCmd(cfg),
		newBoardsCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("boardctl v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
