package racedomain

// ParticipantStatus is a read-only projection of one participant.
type ParticipantStatus struct {
	Name            string `json:"name"`
	Position        int    `json:"position"`
	DisplayPosition string `json:"display_position"`
}

// RoundStatus is the status of every participant, in store order.
type RoundStatus []ParticipantStatus

// RaceResult holds the per-round history and the winners of a full race.
type RaceResult struct {
	History []RoundStatus `json:"history"`
	Winners []string      `json:"winners"`
}

// snapshot projects participants into an independent status slice.
func snapshot(participants []*Participant) RoundStatus {
	status := make(RoundStatus, 0, len(participants))
	for _, p := range participants {
		status = append(status, p.Status())
	}
	return status
}
