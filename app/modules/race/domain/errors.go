package racedomain

import "errors"

// Race errors. Input errors come from parsing or setup; state errors come from
// calling the engine out of order.
var (
	// ErrEmptyField indicates a required input was missing or blank.
	ErrEmptyField = errors.New("required input is empty")

	// ErrInvalidName indicates a car name is empty or too long.
	ErrInvalidName = errors.New("invalid car name")

	// ErrDuplicateName indicates two car names collide.
	ErrDuplicateName = errors.New("duplicate car name")

	// ErrInvalidRoundCount indicates the round count is not a positive integer.
	ErrInvalidRoundCount = errors.New("round count must be a positive integer")

	// ErrNoParticipants indicates a winner lookup with no cars in the race.
	ErrNoParticipants = errors.New("no participants in race")

	// ErrNotReady indicates the race was advanced or queried before setup.
	ErrNotReady = errors.New("race participants have not been set up")
)
