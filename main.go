package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/racing-car/app"
	racerandom "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/random"
	"github.com/Black-And-White-Club/racing-car/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := app.WithShutdownSignals(context.Background())
	defer stop()

	if err := newCLIApp(os.Stdin, os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}

func newCLIApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "racing-car",
		Usage:     "run a turn-based car race in the terminal",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		// Run errors are already printed as "[ERROR]" lines.
		ExitErrHandler: func(*cli.Context, error) {},
		// Global flags; subcommands read them through the context lineage.
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for the random source; 0 picks a fresh one"},
			&cli.DurationFlag{Name: "interval", Usage: "delay between printed rounds"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "metrics", Usage: "print collected metrics to stderr on exit"},
			&cli.StringFlag{Name: "names", Aliases: []string{"n"}, Usage: "comma-separated car names; prompted for when empty"},
			&cli.StringFlag{Name: "rounds", Aliases: []string{"r"}, Usage: "number of rounds; prompted for when empty"},
		},
		Action: func(c *cli.Context) error {
			return runRace(c, nil)
		},
		Commands: []*cli.Command{
			{
				Name:  "replay",
				Usage: "run a race with a fixed sequence of draws",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "draws", Required: true, Usage: "comma-separated draws in 0-9, one per car per round"},
				},
				Action: func(c *cli.Context) error {
					draws, err := parseDraws(c.String("draws"))
					if err != nil {
						fmt.Fprintf(c.App.ErrWriter, "[ERROR] %v\n", err)
						return err
					}
					src := racerandom.NewScriptedSource(draws...)
					if err := runRace(c, src); err != nil {
						return err
					}
					if err := src.Err(); err != nil {
						fmt.Fprintf(c.App.ErrWriter, "warning: %v, missing draws counted as 0\n", err)
					} else if n := src.Remaining(); n > 0 {
						fmt.Fprintf(c.App.ErrWriter, "warning: %d scripted draws were not used\n", n)
					}
					return nil
				},
			},
		},
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("seed") {
		cfg.Race.Seed = c.Int64("seed")
	}
	if c.IsSet("interval") {
		cfg.Race.RoundInterval = c.Duration("interval")
	}
	if c.IsSet("log-level") {
		cfg.Observability.LogLevel = c.String("log-level")
	}
	if c.Bool("metrics") {
		cfg.Observability.MetricsEnabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRace(c *cli.Context, src *racerandom.ScriptedSource) error {
	cfg, err := loadConfig(c)
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "[ERROR] failed to load config: %v\n", err)
		return err
	}

	opts := []app.Option{app.WithLogOutput(c.App.ErrWriter)}
	if src != nil {
		opts = append(opts, app.WithRandomSource(src))
	}

	application, err := app.NewApp(c.Context, cfg, c.App.Reader, c.App.Writer, opts...)
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "[ERROR] failed to initialize app: %v\n", err)
		return err
	}
	defer application.Close()

	runErr := application.Run(c.Context, app.RunOptions{
		Names:  c.String("names"),
		Rounds: c.String("rounds"),
	})

	if c.Bool("metrics") {
		if err := application.Observability.WriteMetrics(c.App.ErrWriter); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "[ERROR] %v\n", err)
		}
	}
	return runErr
}

func parseDraws(raw string) ([]int, error) {
	fields := strings.Split(raw, ",")
	draws := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		d, err := strconv.Atoi(f)
		if err != nil || d < 0 || d > 9 {
			return nil, fmt.Errorf("invalid draw %q: must be an integer in 0-9", f)
		}
		draws = append(draws, d)
	}
	return draws, nil
}
