package racedomain

import (
	"fmt"
	"sync"
)

// Fixed rules of the race.
const (
	MinDraw         = 0
	MaxDraw         = 9
	MovingThreshold = 4
)

const maxHistoryPrealloc = 1024

// RandomSource supplies one draw per participant per round.
type RandomSource interface {
	// PickInRange returns an integer in [min, max], bounds inclusive.
	PickInRange(min, max int) int
}

// State is the lifecycle stage of an Engine.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateRaced
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRaced:
		return "raced"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine runs a race over the participants in its store.
//
// Draws are taken round by round and, within a round, in store order, so a
// scripted RandomSource replays a race exactly. An Engine may be shared
// between goroutines; each call is serialized and RunRace holds the engine for
// the whole race.
type Engine struct {
	mu     sync.Mutex
	store  *ParticipantStore
	state  State
	rounds int
}

// NewEngine creates an engine with an empty store.
func NewEngine() *Engine {
	return NewEngineWithStore(NewParticipantStore())
}

// NewEngineWithStore creates an engine over an existing store. The store is
// reset on the next setup.
func NewEngineWithStore(store *ParticipantStore) *Engine {
	return &Engine{store: store}
}

// SetupParticipants replaces the current field with one participant per name,
// in the given order. Nothing is changed if any name is rejected.
func (e *Engine) SetupParticipants(names []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setupParticipants(names)
}

func (e *Engine) setupParticipants(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one car name is required", ErrEmptyField)
	}

	staged := make([]*Participant, 0, len(names))
	for i, name := range names {
		p, err := NewParticipant(name)
		if err != nil {
			return fmt.Errorf("car %d: %w", i+1, err)
		}
		staged = append(staged, p)
	}

	e.store.Reset()
	for _, p := range staged {
		e.store.Add(p)
	}
	e.state = StateReady
	e.rounds = 0
	return nil
}

// AdvanceRound draws once per participant and advances those whose draw is at
// least MovingThreshold. It returns the status after the round.
func (e *Engine) AdvanceRound(src RandomSource) (RoundStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceRound(src)
}

func (e *Engine) advanceRound(src RandomSource) (RoundStatus, error) {
	if e.state == StateUninitialized {
		return nil, ErrNotReady
	}
	if src == nil {
		return nil, fmt.Errorf("advance round: random source is nil")
	}

	participants := e.store.All()
	for _, p := range participants {
		if src.PickInRange(MinDraw, MaxDraw) >= MovingThreshold {
			p.Advance()
		}
	}
	e.state = StateRaced
	e.rounds++
	return snapshot(participants), nil
}

// RunRace sets up the named participants and runs the given number of rounds.
func (e *Engine) RunRace(names []string, rounds int, src RandomSource) (*RaceResult, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRoundCount, rounds)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setupParticipants(names); err != nil {
		return nil, err
	}

	history := make([]RoundStatus, 0, historyCapacity(rounds))
	for round := 1; round <= rounds; round++ {
		status, err := e.advanceRound(src)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		history = append(history, status)
	}

	winners, err := e.findWinners()
	if err != nil {
		return nil, err
	}

	return &RaceResult{History: history, Winners: winners}, nil
}

// CurrentStatus returns the status of every participant without changing it.
func (e *Engine) CurrentStatus() (RoundStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateUninitialized {
		return nil, ErrNotReady
	}
	return snapshot(e.store.All()), nil
}

// FindWinners returns every participant at the leading position, in store
// order. Ties are not broken.
func (e *Engine) FindWinners() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findWinners()
}

func (e *Engine) findWinners() ([]string, error) {
	participants := e.store.All()
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	maxPosition := participants[0].Position()
	for _, p := range participants[1:] {
		if p.Position() > maxPosition {
			maxPosition = p.Position()
		}
	}

	winners := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.Position() == maxPosition {
			winners = append(winners, p.Name())
		}
	}
	return winners, nil
}

// State reports the engine's lifecycle stage.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RoundsElapsed reports how many rounds have run since the last setup.
func (e *Engine) RoundsElapsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rounds
}

// Size reports how many participants are in the race.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Size()
}

// historyCapacity bounds the history preallocation so a large round count
// grows the slice as rounds run instead of reserving it up front.
func historyCapacity(rounds int) int {
	return min(rounds, maxHistoryPrealloc)
}
