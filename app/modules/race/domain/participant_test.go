package racedomain

import (
	"errors"
	"testing"
)

func TestNewParticipant(t *testing.T) {
	p, err := NewParticipant("pobi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "pobi" {
		t.Fatalf("expected name pobi, got %q", p.Name())
	}
	if p.Position() != 0 {
		t.Fatalf("expected starting position 0, got %d", p.Position())
	}
	if p.ProgressMarker() != "" {
		t.Fatalf("expected empty marker at start, got %q", p.ProgressMarker())
	}
}

func TestNewParticipantRejectsBlankName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		_, err := NewParticipant(name)
		if !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}
}

func TestParticipantAdvanceAccumulates(t *testing.T) {
	p, _ := NewParticipant("woni")

	for m := 1; m <= 7; m++ {
		p.Advance()
		if p.Position() != m {
			t.Fatalf("after %d advances expected position %d, got %d", m, m, p.Position())
		}
		if len(p.ProgressMarker()) != m {
			t.Fatalf("after %d advances expected marker length %d, got %q", m, m, p.ProgressMarker())
		}
	}
}

func TestParticipantStatusIsACopy(t *testing.T) {
	p, _ := NewParticipant("jun")
	p.Advance()

	status := p.Status()
	status.Position = 99
	status.DisplayPosition = "xxxx"

	if p.Position() != 1 || p.ProgressMarker() != "-" {
		t.Fatalf("mutating a status changed the participant: position=%d marker=%q", p.Position(), p.ProgressMarker())
	}
}
