package racedomain

import (
	"fmt"
	"strings"
)

// ProgressMarker is the character repeated once per position in a display string.
const ProgressMarker = "-"

// Participant is a single car in a race.
type Participant struct {
	name     string
	position int
}

// NewParticipant creates a participant at the starting line.
func NewParticipant(name string) (*Participant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	return &Participant{name: name}, nil
}

// Name returns the participant's name.
func (p *Participant) Name() string {
	return p.name
}

// Position returns how many times the participant has moved.
func (p *Participant) Position() int {
	return p.position
}

// Advance moves the participant forward by exactly one.
func (p *Participant) Advance() {
	p.position++
}

// ProgressMarker renders the position as a run of markers, empty at the start.
func (p *Participant) ProgressMarker() string {
	return strings.Repeat(ProgressMarker, p.position)
}

// Status returns a value snapshot of the participant.
func (p *Participant) Status() ParticipantStatus {
	return ParticipantStatus{
		Name:            p.name,
		Position:        p.position,
		DisplayPosition: p.ProgressMarker(),
	}
}
