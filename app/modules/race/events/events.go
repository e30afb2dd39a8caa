package raceevents

import (
	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
)

// Race lifecycle topics.
const (
	RaceStartedV1        = "race.started.v1"
	RaceRoundCompletedV1 = "race.round.completed.v1"
	RaceFinishedV1       = "race.finished.v1"
	RaceFailedV1         = "race.failed.v1"
)

// Metadata keys set on every race event.
const (
	MetadataRaceID = "race_id"
	MetadataRound  = "round"
)

// RaceStartedPayloadV1 announces a race that has been set up.
type RaceStartedPayloadV1 struct {
	RaceID       string   `json:"race_id"`
	Participants []string `json:"participants"`
	Rounds       int      `json:"rounds"`
}

// RaceRoundCompletedPayloadV1 carries the status after one round.
type RaceRoundCompletedPayloadV1 struct {
	RaceID      string                 `json:"race_id"`
	Round       int                    `json:"round"`
	TotalRounds int                    `json:"total_rounds"`
	Status      racedomain.RoundStatus `json:"status"`
}

// IsFinalRound reports whether this is the last round of the race.
func (p *RaceRoundCompletedPayloadV1) IsFinalRound() bool {
	return p.Round >= p.TotalRounds
}

// RaceFinishedPayloadV1 carries the winners of a completed race.
type RaceFinishedPayloadV1 struct {
	RaceID  string   `json:"race_id"`
	Rounds  int      `json:"rounds"`
	Winners []string `json:"winners"`
}

// RaceFailedPayloadV1 reports a race that could not be run.
type RaceFailedPayloadV1 struct {
	RaceID string `json:"race_id"`
	Reason string `json:"reason"`
}
