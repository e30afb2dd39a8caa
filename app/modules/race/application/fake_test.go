package raceservice

import (
	"sync"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ------------------------
// Fake Engine
// ------------------------

type FakeEngine struct {
	trace []string

	RunRaceFunc       func(names []string, rounds int, src racedomain.RandomSource) (*racedomain.RaceResult, error)
	CurrentStatusFunc func() (racedomain.RoundStatus, error)
	FindWinnersFunc   func() ([]string, error)
}

func (f *FakeEngine) State() racedomain.State {
	return racedomain.StateRaced
}

func (f *FakeEngine) RoundsElapsed() int {
	return 0
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		trace: []string{},
	}
}

func (f *FakeEngine) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeEngine) RunRace(names []string, rounds int, src racedomain.RandomSource) (*racedomain.RaceResult, error) {
	f.record("RunRace")
	if f.RunRaceFunc != nil {
		return f.RunRaceFunc(names, rounds, src)
	}
	return &racedomain.RaceResult{}, nil
}

func (f *FakeEngine) CurrentStatus() (racedomain.RoundStatus, error) {
	f.record("CurrentStatus")
	if f.CurrentStatusFunc != nil {
		return f.CurrentStatusFunc()
	}
	return nil, racedomain.ErrNotReady
}

func (f *FakeEngine) FindWinners() ([]string, error) {
	f.record("FindWinners")
	if f.FindWinnersFunc != nil {
		return f.FindWinnersFunc()
	}
	return nil, racedomain.ErrNoParticipants
}

func (f *FakeEngine) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Engine = (*FakeEngine)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type publishedMessage struct {
	Topic   string
	Message *message.Message
}

type FakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage

	PublishFunc func(topic string, msgs ...*message.Message) error
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishFunc != nil {
		if err := f.PublishFunc(topic, msgs...); err != nil {
			return err
		}
	}
	for _, m := range msgs {
		f.published = append(f.published, publishedMessage{Topic: topic, Message: m})
	}
	return nil
}

func (f *FakePublisher) Close() error {
	return nil
}

func (f *FakePublisher) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.published))
	for _, p := range f.published {
		out = append(out, p.Topic)
	}
	return out
}

func (f *FakePublisher) Published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)
	return out
}

var _ message.Publisher = (*FakePublisher)(nil)
