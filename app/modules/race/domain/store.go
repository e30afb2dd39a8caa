package racedomain

// ParticipantStore keeps participants in insertion order.
//
// All returns a copy of the sequence; the participants themselves are shared
// with the store. Use Status snapshots when an isolated view is needed.
type ParticipantStore struct {
	participants []*Participant
}

// NewParticipantStore creates an empty store.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{participants: []*Participant{}}
}

// Add appends a participant.
func (s *ParticipantStore) Add(p *Participant) {
	s.participants = append(s.participants, p)
}

// All returns the participants in insertion order.
func (s *ParticipantStore) All() []*Participant {
	out := make([]*Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// Size returns the number of stored participants.
func (s *ParticipantStore) Size() int {
	return len(s.participants)
}

// Reset drops every participant.
func (s *ParticipantStore) Reset() {
	s.participants = []*Participant{}
}
