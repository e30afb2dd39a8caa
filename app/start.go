package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/racing-car/app/modules/race/application/parsers"
	"github.com/google/uuid"
)

// RunOptions carries answers given up front. An empty field is asked for on
// the console instead.
type RunOptions struct {
	Names  string
	Rounds string
}

// Run asks for the cars and round count, runs one race and waits until its
// results are printed. Any error is printed as an "[ERROR]" line and returned.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	logger := a.Observability.Logger

	if err := a.startRouter(ctx); err != nil {
		return a.reportError(ctx, err)
	}

	rawNames := opts.Names
	if rawNames == "" {
		line, err := a.prompter.ReadCarNames(ctx)
		if err != nil {
			return a.reportError(ctx, err)
		}
		rawNames = line
	}
	names, err := parsers.ParseCarNames(rawNames)
	if err != nil {
		return a.reportError(ctx, err)
	}

	rawRounds := opts.Rounds
	if rawRounds == "" {
		line, err := a.prompter.ReadRoundCount(ctx)
		if err != nil {
			return a.reportError(ctx, err)
		}
		rawRounds = line
	}
	rounds, err := parsers.ParseRoundCount(rawRounds)
	if err != nil {
		return a.reportError(ctx, err)
	}

	logger.InfoContext(ctx, "Starting race",
		slog.Int("participants", len(names)),
		slog.Int("rounds", rounds),
		slog.Int64("seed", a.RaceModule.Seed),
	)

	outcome, err := a.RaceModule.RaceService.RunRace(ctx, names, rounds)
	if err != nil {
		return a.reportError(ctx, err)
	}

	if err := a.waitForCompletion(ctx, outcome.RaceID); err != nil {
		return a.reportError(ctx, err)
	}
	return nil
}

// waitForCompletion blocks until the handlers finished rendering raceID.
func (a *App) waitForCompletion(ctx context.Context, raceID uuid.UUID) error {
	completions := a.RaceModule.Handlers.Completions()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-completions:
			if c.RaceID != raceID.String() {
				a.Observability.Logger.DebugContext(ctx, "Skipping completion of another race",
					slog.String("race_id", c.RaceID),
				)
				continue
			}
			if c.Err != nil {
				return fmt.Errorf("failed to render race %s: %w", raceID, c.Err)
			}
			return nil
		}
	}
}

func (a *App) reportError(ctx context.Context, err error) error {
	a.Observability.Logger.DebugContext(ctx, "Race run failed", slog.Any("error", err))
	if printErr := a.RaceModule.Presenter.PrintError(err); printErr != nil {
		a.Observability.Logger.ErrorContext(ctx, "Failed to print error", slog.Any("error", printErr))
	}
	return err
}
