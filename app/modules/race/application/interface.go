package raceservice

import (
	"context"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	"github.com/google/uuid"
)

// Service runs races and answers status queries.
type Service interface {
	// RunRace runs a full race and publishes its lifecycle events.
	RunRace(ctx context.Context, names []string, rounds int) (*RaceOutcome, error)

	// CurrentStatus returns the status of the most recent race.
	CurrentStatus(ctx context.Context) (racedomain.RoundStatus, error)

	// Winners returns the leaders of the most recent race.
	Winners(ctx context.Context) ([]string, error)
}

// Engine is the part of racedomain.Engine the service depends on.
type Engine interface {
	RunRace(names []string, rounds int, src racedomain.RandomSource) (*racedomain.RaceResult, error)
	CurrentStatus() (racedomain.RoundStatus, error)
	FindWinners() ([]string, error)
	State() racedomain.State
	RoundsElapsed() int
}

// RaceOutcome is the result of a race together with its identifier.
type RaceOutcome struct {
	RaceID  uuid.UUID
	History []racedomain.RoundStatus
	Winners []string
}

var _ Engine = (*racedomain.Engine)(nil)
