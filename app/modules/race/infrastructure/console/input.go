package raceconsole

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	CarNamesPrompt   = "Enter the names of the cars to race (comma-separated)."
	RoundCountPrompt = "How many rounds will the race run?"
)

// Prompter asks questions on out and reads one line answers from in.
//
// At most one read of in is in flight. A read abandoned by a cancelled
// question stays pending, and its line answers the next question.
type Prompter struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	pending chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewPrompter returns a Prompter reading answers from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ReadCarNames prompts for the comma separated car names and returns the raw line.
func (p *Prompter) ReadCarNames(ctx context.Context) (string, error) {
	return p.ask(ctx, CarNamesPrompt)
}

// ReadRoundCount prompts for the number of rounds and returns the raw line.
func (p *Prompter) ReadRoundCount(ctx context.Context) (string, error) {
	return p.ask(ctx, RoundCountPrompt)
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintln(p.out, prompt); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	if p.pending == nil {
		p.pending = make(chan readResult, 1)
		go func(done chan<- readResult) {
			line, err := p.in.ReadString('\n')
			done <- readResult{line: line, err: err}
		}(p.pending)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		// A final line without a trailing newline is still an answer. An empty
		// stream yields an empty answer, which the parsers reject.
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", r.err)
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}
