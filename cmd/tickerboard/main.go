// Command tickerboard streams Upbit ticker updates into a terminal table.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rickgao/upbit-ticker/internal/config"
	"github.com/rickgao/upbit-ticker/internal/version"
)

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "tickerboard:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdout).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tickerboard:", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. The table and command output go to out;
// logs always go to stderr.
func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "tickerboard",
		Usage:     "Stream Upbit ticker updates into a terminal table",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config `FILE` (defaults apply when empty)",
				Sources: cli.EnvVars("TICKERBOARD_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level: debug, info, warn or error",
				Sources: cli.EnvVars("TICKERBOARD_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format: text or json",
			},
		}, watchFlags()...),
		Action: watchAction,
		Commands: []*cli.Command{
			watchCommand(),
			marketsCommand(),
			{
				Name:  "version",
				Usage: "Print build information",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Bool("json") {
						enc := json.NewEncoder(cmd.Root().Writer)
						enc.SetIndent("", "  ")
						return enc.Encode(version.Get())
					}
					_, err := fmt.Fprintln(cmd.Root().Writer, "tickerboard", version.String())
					return err
				},
			},
		},
	}
}

// watchFlags select and bound the stream. They are declared on the root
// command, so every subcommand inherits them.
func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "how long to stream before exiting (0 runs until interrupted)",
		},
		&cli.StringSliceFlag{
			Name:  "codes",
			Usage: "market codes to subscribe to (e.g. KRW-BTC,KRW-ETH)",
		},
		&cli.BoolFlag{
			Name:  "all-markets",
			Usage: "subscribe to every market in the catalog",
		},
		&cli.StringFlag{
			Name:  "quote",
			Usage: "with --all-markets, keep only markets quoted in this currency",
		},
		&cli.StringFlag{
			Name:  "ticket",
			Usage: `subscription ticket ("auto" generates one per run)`,
		},
		&cli.BoolFlag{
			Name:  "no-clear",
			Usage: "append each repaint instead of clearing the screen",
		},
		&cli.BoolFlag{
			Name:  "exit-on-close",
			Usage: "exit as soon as the server closes the stream",
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "Stream the ticker table (default)",
		Action: watchAction,
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.LoadAndValidate(cmd.String("config"), func(cfg *config.Config) {
		if cmd.IsSet("log-level") {
			cfg.Log.Level = cmd.String("log-level")
		}
		if cmd.IsSet("log-format") {
			cfg.Log.Format = cmd.String("log-format")
		}
		if cmd.IsSet("duration") {
			d := cmd.Duration("duration")
			cfg.Lifetime.Duration = &d
		}
		if cmd.IsSet("codes") {
			cfg.Subscription.Codes = cmd.StringSlice("codes")
			cfg.Subscription.AllMarkets = false
		}
		if cmd.IsSet("all-markets") {
			cfg.Subscription.AllMarkets = cmd.Bool("all-markets")
		}
		if cmd.IsSet("quote") {
			cfg.Subscription.Quote = cmd.String("quote")
		}
		if cmd.IsSet("ticket") {
			cfg.Subscription.Ticket = cmd.String("ticket")
		}
		if cmd.IsSet("exit-on-close") {
			cfg.Lifetime.ExitOnClose = cmd.Bool("exit-on-close")
		}
		if cmd.Bool("no-clear") {
			off := false
			cfg.Display.ClearScreen = &off
		}
	})
}

// newLogger builds the process logger. Logs go to w so they never
// interleave with the table on stdout.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}
