package racehandlers

import (
	"context"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	raceevents "github.com/Black-And-White-Club/racing-car/app/modules/race/events"
)

// Handlers defines the interface for race event handlers.
type Handlers interface {
	// HandleRaceStarted prints the result header.
	HandleRaceStarted(ctx context.Context, payload *raceevents.RaceStartedPayloadV1) error

	// HandleRoundCompleted prints one round of standings.
	HandleRoundCompleted(ctx context.Context, payload *raceevents.RaceRoundCompletedPayloadV1) error

	// HandleRaceFinished prints the winners and reports completion.
	HandleRaceFinished(ctx context.Context, payload *raceevents.RaceFinishedPayloadV1) error

	// HandleRaceFailed reports a race that never started.
	HandleRaceFailed(ctx context.Context, payload *raceevents.RaceFailedPayloadV1) error

	// Completions delivers one value per finished or failed race.
	Completions() <-chan Completion
}

// Renderer is the display the handlers write to.
type Renderer interface {
	PrintResultHeader() error
	PrintRound(round racedomain.RoundStatus) error
	PrintWinners(winners []string) error
}

// Pacer delays round rendering. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Completion marks the end of a race's event stream.
type Completion struct {
	RaceID  string
	Winners []string
	Err     error
}
