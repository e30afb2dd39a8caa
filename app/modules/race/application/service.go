package raceservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	raceevents "github.com/Black-And-White-Club/racing-car/app/modules/race/events"
	racemetrics "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RaceService"

// RaceService implements the Service interface.
type RaceService struct {
	engine    Engine
	source    racedomain.RandomSource
	publisher message.Publisher
	logger    *slog.Logger
	metrics   racemetrics.RaceMetrics
	tracer    trace.Tracer
	newID     func() uuid.UUID
}

// NewRaceService creates a new RaceService. A nil publisher disables events.
func NewRaceService(
	engine Engine,
	source racedomain.RandomSource,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics racemetrics.RaceMetrics,
	tracer trace.Tracer,
) *RaceService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = racemetrics.NewNoop()
	}
	return &RaceService{
		engine:    engine,
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		newID:     uuid.New,
	}
}

// RunRace runs a race over names for the given number of rounds.
func (s *RaceService) RunRace(ctx context.Context, names []string, rounds int) (*RaceOutcome, error) {
	raceID := s.newID()

	return withTelemetry(s, ctx, "RunRace", raceID.String(), func(ctx context.Context) (*RaceOutcome, error) {
		return s.runRaceLogic(ctx, raceID, names, rounds)
	})
}

func (s *RaceService) runRaceLogic(ctx context.Context, raceID uuid.UUID, names []string, rounds int) (*RaceOutcome, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("race.participants", len(names)),
		attribute.Int("race.rounds", rounds),
	)

	result, err := s.engine.RunRace(names, rounds, s.source)
	if err != nil {
		failed := &raceevents.RaceFailedPayloadV1{RaceID: raceID.String(), Reason: err.Error()}
		if pubErr := s.publishEvent(ctx, raceID, raceevents.RaceFailedV1, 0, failed); pubErr != nil {
			s.logger.WarnContext(ctx, "Failed to publish race failure",
				slog.String("race_id", raceID.String()),
				slog.Any("error", pubErr),
			)
		}
		return nil, err
	}

	started := &raceevents.RaceStartedPayloadV1{
		RaceID:       raceID.String(),
		Participants: append([]string(nil), names...),
		Rounds:       rounds,
	}
	if err := s.publishEvent(ctx, raceID, raceevents.RaceStartedV1, 0, started); err != nil {
		return nil, err
	}

	var previous racedomain.RoundStatus
	for i, status := range result.History {
		round := i + 1
		s.metrics.RecordRound(ctx, len(status), countMoves(previous, status))
		previous = status

		completed := &raceevents.RaceRoundCompletedPayloadV1{
			RaceID:      raceID.String(),
			Round:       round,
			TotalRounds: len(result.History),
			Status:      status,
		}
		if err := s.publishEvent(ctx, raceID, raceevents.RaceRoundCompletedV1, round, completed); err != nil {
			return nil, err
		}
	}

	finished := &raceevents.RaceFinishedPayloadV1{
		RaceID:  raceID.String(),
		Rounds:  len(result.History),
		Winners: result.Winners,
	}
	if err := s.publishEvent(ctx, raceID, raceevents.RaceFinishedV1, len(result.History), finished); err != nil {
		return nil, err
	}

	s.metrics.RecordRaceCompleted(ctx, len(result.History), len(result.Winners))
	span.SetAttributes(attribute.StringSlice("race.winners", result.Winners))
	s.logger.DebugContext(ctx, "Race complete",
		slog.String("race_id", raceID.String()),
		slog.String("engine_state", s.engine.State().String()),
		slog.Int("rounds_elapsed", s.engine.RoundsElapsed()),
	)

	return &RaceOutcome{
		RaceID:  raceID,
		History: result.History,
		Winners: result.Winners,
	}, nil
}

// CurrentStatus returns the standings of the most recent race.
func (s *RaceService) CurrentStatus(ctx context.Context) (racedomain.RoundStatus, error) {
	return withTelemetry(s, ctx, "CurrentStatus", "", func(ctx context.Context) (racedomain.RoundStatus, error) {
		return s.engine.CurrentStatus()
	})
}

// Winners returns the leaders of the most recent race.
func (s *RaceService) Winners(ctx context.Context) ([]string, error) {
	return withTelemetry(s, ctx, "Winners", "", func(ctx context.Context) ([]string, error) {
		return s.engine.FindWinners()
	})
}

// publishEvent marshals payload and publishes it with the race correlation metadata.
func (s *RaceService) publishEvent(ctx context.Context, raceID uuid.UUID, topic string, round int, payload any) error {
	if s.publisher == nil {
		return nil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for event %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	msg.SetContext(ctx)
	middleware.SetCorrelationID(raceID.String(), msg)
	msg.Metadata.Set(raceevents.MetadataRaceID, raceID.String())
	if round > 0 {
		msg.Metadata.Set(raceevents.MetadataRound, strconv.Itoa(round))
	}

	s.logger.DebugContext(ctx, "Publishing event",
		slog.String("event", topic),
		slog.String("race_id", raceID.String()),
		slog.String("message_id", msg.UUID),
	)

	if err := s.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", topic, err)
	}
	return nil
}

// countMoves returns how many participants moved between two snapshots.
func countMoves(previous, current racedomain.RoundStatus) int {
	moved := 0
	for i, status := range current {
		before := 0
		if i < len(previous) {
			before = previous[i].Position
		}
		if status.Position > before {
			moved++
		}
	}
	return moved
}

// isRaceError reports whether err is an expected input or state error.
func isRaceError(err error) bool {
	for _, target := range []error{
		racedomain.ErrEmptyField,
		racedomain.ErrInvalidName,
		racedomain.ErrDuplicateName,
		racedomain.ErrInvalidRoundCount,
		racedomain.ErrNoParticipants,
		racedomain.ErrNotReady,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *RaceService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, "Operation triggered",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(err)
		if isRaceError(err) {
			s.logger.WarnContext(ctx, "Operation rejected",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("reason", err.Error()),
			)
			return result, err
		}
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

var _ Service = (*RaceService)(nil)
