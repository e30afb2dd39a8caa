package racehandlers

import (
	"context"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
)

// ------------------------
// Fake Renderer
// ------------------------

type FakeRenderer struct {
	trace  []string
	rounds []racedomain.RoundStatus

	PrintResultHeaderFunc func() error
	PrintRoundFunc        func(round racedomain.RoundStatus) error
	PrintWinnersFunc      func(winners []string) error
}

func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{
		trace: []string{},
	}
}

func (f *FakeRenderer) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRenderer) PrintResultHeader() error {
	f.record("PrintResultHeader")
	if f.PrintResultHeaderFunc != nil {
		return f.PrintResultHeaderFunc()
	}
	return nil
}

func (f *FakeRenderer) PrintRound(round racedomain.RoundStatus) error {
	f.record("PrintRound")
	f.rounds = append(f.rounds, round)
	if f.PrintRoundFunc != nil {
		return f.PrintRoundFunc(round)
	}
	return nil
}

func (f *FakeRenderer) PrintWinners(winners []string) error {
	f.record("PrintWinners")
	if f.PrintWinnersFunc != nil {
		return f.PrintWinnersFunc(winners)
	}
	return nil
}

func (f *FakeRenderer) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Renderer = (*FakeRenderer)(nil)

// ------------------------
// Fake Pacer
// ------------------------

type FakePacer struct {
	waits    int
	WaitFunc func(ctx context.Context) error
}

func (f *FakePacer) Wait(ctx context.Context) error {
	f.waits++
	if f.WaitFunc != nil {
		return f.WaitFunc(ctx)
	}
	return nil
}

var _ Pacer = (*FakePacer)(nil)
