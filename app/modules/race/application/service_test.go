package raceservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	raceevents "github.com/Black-And-White-Club/racing-car/app/modules/race/events"
	racemetrics "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/metrics"
	racerandom "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/random"
	"github.com/Black-And-White-Club/racing-car/internal/testutils"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var testRaceID = uuid.MustParse("6f1c2a7e-1f0b-4b8e-9a55-3a2f1d0c9b11")

func newTestService(engine Engine, source racedomain.RandomSource, pub message.Publisher, metrics racemetrics.RaceMetrics) *RaceService {
	svc := NewRaceService(
		engine,
		source,
		pub,
		slog.Default(),
		metrics,
		noop.NewTracerProvider().Tracer("test"),
	)
	svc.newID = func() uuid.UUID { return testRaceID }
	return svc
}

func decode[T any](t *testing.T, msg *message.Message) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(msg.Payload, &out))
	return out
}

func TestRunRaceScenario(t *testing.T) {
	pub := NewFakePublisher()
	svc := newTestService(racedomain.NewEngine(), racerandom.NewScriptedSource(4, 3, 4, 4), pub, nil)

	outcome, err := svc.RunRace(context.Background(), []string{"pobi", "woni"}, 2)
	require.NoError(t, err)

	assert.Equal(t, testRaceID, outcome.RaceID)
	assert.Equal(t, []string{"pobi"}, outcome.Winners)
	require.Len(t, outcome.History, 2)
	assert.Equal(t, racedomain.RoundStatus{
		{Name: "pobi", Position: 1, DisplayPosition: "-"},
		{Name: "woni", Position: 0, DisplayPosition: ""},
	}, outcome.History[0])
	assert.Equal(t, racedomain.RoundStatus{
		{Name: "pobi", Position: 2, DisplayPosition: "--"},
		{Name: "woni", Position: 1, DisplayPosition: "-"},
	}, outcome.History[1])

	assert.Equal(t, []string{
		raceevents.RaceStartedV1,
		raceevents.RaceRoundCompletedV1,
		raceevents.RaceRoundCompletedV1,
		raceevents.RaceFinishedV1,
	}, pub.Topics())

	published := pub.Published()
	for _, p := range published {
		assert.Equal(t, testRaceID.String(), middleware.MessageCorrelationID(p.Message))
		assert.Equal(t, testRaceID.String(), p.Message.Metadata.Get(raceevents.MetadataRaceID))
	}

	started := decode[raceevents.RaceStartedPayloadV1](t, published[0].Message)
	assert.Equal(t, []string{"pobi", "woni"}, started.Participants)
	assert.Equal(t, 2, started.Rounds)

	second := decode[raceevents.RaceRoundCompletedPayloadV1](t, published[2].Message)
	assert.Equal(t, 2, second.Round)
	assert.True(t, second.IsFinalRound())
	assert.Equal(t, "2", published[2].Message.Metadata.Get(raceevents.MetadataRound))
	assert.Equal(t, outcome.History[1], second.Status)

	finished := testutils.NewPayloadMatcher(raceevents.RaceFinishedPayloadV1{
		RaceID:  testRaceID.String(),
		Rounds:  2,
		Winners: []string{"pobi"},
	})
	assert.True(t, finished.Matches(published[3].Message), finished.String())
}

func TestRunRaceJointWinners(t *testing.T) {
	svc := newTestService(racedomain.NewEngine(), racerandom.NewScriptedSource(4, 4), NewFakePublisher(), nil)

	outcome, err := svc.RunRace(context.Background(), []string{"pobi", "woni"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"pobi", "woni"}, outcome.Winners)
}

func TestRunRaceErrors(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		rounds  int
		wantErr error
	}{
		{name: "no names", names: []string{}, rounds: 1, wantErr: racedomain.ErrEmptyField},
		{name: "zero rounds", names: []string{"pobi"}, rounds: 0, wantErr: racedomain.ErrInvalidRoundCount},
		{name: "negative rounds", names: []string{"pobi"}, rounds: -1, wantErr: racedomain.ErrInvalidRoundCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := NewFakePublisher()
			svc := newTestService(racedomain.NewEngine(), racerandom.NewScriptedSource(), pub, nil)

			outcome, err := svc.RunRace(context.Background(), tt.names, tt.rounds)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, outcome)

			require.Equal(t, []string{raceevents.RaceFailedV1}, pub.Topics())
			failed := decode[raceevents.RaceFailedPayloadV1](t, pub.Published()[0].Message)
			assert.Equal(t, err.Error(), failed.Reason)
		})
	}
}

func TestRunRacePublishFailure(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishFunc = func(topic string, msgs ...*message.Message) error {
		if topic == raceevents.RaceFinishedV1 {
			return errors.New("bus closed")
		}
		return nil
	}
	svc := newTestService(racedomain.NewEngine(), racerandom.NewScriptedSource(9), pub, nil)

	_, err := svc.RunRace(context.Background(), []string{"pobi"}, 1)
	require.Error(t, err)
	assert.True(t, testutils.ContainsString("RunRace").Matches(err))
	assert.True(t, testutils.ContainsString(raceevents.RaceFinishedV1).Matches(err))
	assert.False(t, isRaceError(err))
}

func TestRunRaceWithoutPublisher(t *testing.T) {
	svc := newTestService(racedomain.NewEngine(), racerandom.NewScriptedSource(1, 8), nil, nil)

	outcome, err := svc.RunRace(context.Background(), []string{"pobi", "woni"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"woni"}, outcome.Winners)
}

func TestRunRaceRecoversFromPanic(t *testing.T) {
	engine := NewFakeEngine()
	engine.RunRaceFunc = func([]string, int, racedomain.RandomSource) (*racedomain.RaceResult, error) {
		panic("engine exploded")
	}
	svc := newTestService(engine, nil, NewFakePublisher(), nil)

	outcome, err := svc.RunRace(context.Background(), []string{"pobi"}, 1)
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Contains(t, err.Error(), "panic in RunRace")
	assert.Equal(t, []string{"RunRace"}, engine.Trace())
}

func TestRunRaceRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := racemetrics.NewPrometheusMetrics(reg)
	require.NoError(t, err)

	svc := newTestService(racedomain.NewEngine(), racerandom.NewScriptedSource(4, 3, 4, 4), NewFakePublisher(), metrics)
	_, err = svc.RunRace(context.Background(), []string{"pobi", "woni"}, 2)
	require.NoError(t, err)

	_, err = svc.RunRace(context.Background(), []string{"pobi"}, 0)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg,
		"racing_car_rounds_advanced_total",
		"racing_car_moves_total",
		"racing_car_races_completed_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				values[mf.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["racing_car_rounds_advanced_total"])
	assert.Equal(t, 4.0, values["racing_car_draws_total"])
	assert.Equal(t, 3.0, values["racing_car_moves_total"])
	assert.Equal(t, 1.0, values["racing_car_races_completed_total"])
	assert.Equal(t, 2.0, values["racing_car_operation_attempts_total"])
	assert.Equal(t, 1.0, values["racing_car_operation_success_total"])
	assert.Equal(t, 1.0, values["racing_car_operation_failure_total"])
}

func TestCurrentStatusAndWinners(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*FakeEngine)
		wantStatus  racedomain.RoundStatus
		wantWinners []string
		wantErr     error
	}{
		{
			name: "after a race",
			setup: func(f *FakeEngine) {
				f.CurrentStatusFunc = func() (racedomain.RoundStatus, error) {
					return racedomain.RoundStatus{{Name: "pobi", Position: 3, DisplayPosition: "---"}}, nil
				}
				f.FindWinnersFunc = func() ([]string, error) {
					return []string{"pobi"}, nil
				}
			},
			wantStatus:  racedomain.RoundStatus{{Name: "pobi", Position: 3, DisplayPosition: "---"}},
			wantWinners: []string{"pobi"},
		},
		{
			name:    "before any race",
			setup:   func(f *FakeEngine) {},
			wantErr: racedomain.ErrNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewFakeEngine()
			tt.setup(engine)
			svc := newTestService(engine, nil, nil, nil)

			status, err := svc.CurrentStatus(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)

			winners, err := svc.Winners(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantWinners, winners)
			assert.Equal(t, []string{"CurrentStatus", "FindWinners"}, engine.Trace())
		})
	}
}

func TestCountMoves(t *testing.T) {
	prev := racedomain.RoundStatus{{Position: 1}, {Position: 0}, {Position: 2}}
	cur := racedomain.RoundStatus{{Position: 2}, {Position: 0}, {Position: 3}}
	assert.Equal(t, 2, countMoves(prev, cur))
	assert.Equal(t, 1, countMoves(nil, cur[:2]))
	assert.Equal(t, 2, countMoves(nil, cur))
}
