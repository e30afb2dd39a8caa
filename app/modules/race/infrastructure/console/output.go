package raceconsole

import (
	"fmt"
	"io"
	"strings"
	"sync"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
)

const (
	ResultHeader = "Race results"
	ErrorPrefix  = "[ERROR]"
	winnerSep    = ", "
)

// FormatParticipant renders one car line, e.g. "pobi : --".
func FormatParticipant(status racedomain.ParticipantStatus) string {
	return fmt.Sprintf("%s : %s", status.Name, status.DisplayPosition)
}

// FormatRound renders every car line of a round followed by a blank line.
func FormatRound(round racedomain.RoundStatus) string {
	var b strings.Builder
	for _, status := range round {
		b.WriteString(FormatParticipant(status))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// FormatWinners renders the final line, names joined by ", ".
func FormatWinners(winners []string) string {
	return "Final winner(s): " + strings.Join(winners, winnerSep)
}

// FormatError prefixes err with the error marker unless it already carries it.
func FormatError(err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, ErrorPrefix) {
		return msg
	}
	return ErrorPrefix + " " + msg
}

// Presenter writes race output to a display. Writes are serialized so
// handlers running on router goroutines never interleave lines.
type Presenter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPresenter returns a Presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// PrintResultHeader writes a blank line and the result header.
func (p *Presenter) PrintResultHeader() error {
	return p.write("\n" + ResultHeader + "\n")
}

// PrintRound writes one round as rendered by FormatRound.
func (p *Presenter) PrintRound(round racedomain.RoundStatus) error {
	return p.write(FormatRound(round))
}

// PrintWinners writes the final winner line.
func (p *Presenter) PrintWinners(winners []string) error {
	return p.write(FormatWinners(winners) + "\n")
}

// PrintError writes err as an error line.
func (p *Presenter) PrintError(err error) error {
	return p.write(FormatError(err) + "\n")
}

func (p *Presenter) write(s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.out, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
