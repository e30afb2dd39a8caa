package racehandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	raceevents "github.com/Black-And-White-Club/racing-car/app/modules/race/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const completionBuffer = 16

// ErrRaceFailed wraps the reason carried by a race.failed event.
var ErrRaceFailed = errors.New("race failed")

// RaceHandlers implements the Handlers interface.
type RaceHandlers struct {
	renderer    Renderer
	pacer       Pacer
	logger      *slog.Logger
	tracer      trace.Tracer
	completions chan Completion
}

// NewRaceHandlers creates a new RaceHandlers instance. A nil pacer renders
// rounds as fast as they arrive.
func NewRaceHandlers(
	renderer Renderer,
	pacer Pacer,
	logger *slog.Logger,
	tracer trace.Tracer,
) *RaceHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &RaceHandlers{
		renderer:    renderer,
		pacer:       pacer,
		logger:      logger,
		tracer:      tracer,
		completions: make(chan Completion, completionBuffer),
	}
}

// NewIntervalPacer returns a limiter that lets one round through per interval,
// or nil when interval is not positive.
func NewIntervalPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// HandleRaceStarted prints the result header.
func (h *RaceHandlers) HandleRaceStarted(ctx context.Context, payload *raceevents.RaceStartedPayloadV1) error {
	ctx, span := h.tracer.Start(ctx, "RaceHandlers.HandleRaceStarted")
	defer span.End()

	h.logger.InfoContext(ctx, "Race started",
		slog.String("race_id", payload.RaceID),
		slog.Int("participants", len(payload.Participants)),
		slog.Int("rounds", payload.Rounds),
	)

	if err := h.renderer.PrintResultHeader(); err != nil {
		return h.fail(ctx, span, payload.RaceID, err)
	}
	return nil
}

// HandleRoundCompleted prints one round of standings, waiting on the pacer first.
func (h *RaceHandlers) HandleRoundCompleted(ctx context.Context, payload *raceevents.RaceRoundCompletedPayloadV1) error {
	ctx, span := h.tracer.Start(ctx, "RaceHandlers.HandleRoundCompleted")
	defer span.End()
	span.SetAttributes(attribute.Int("race.round", payload.Round))

	if h.pacer != nil {
		if err := h.pacer.Wait(ctx); err != nil {
			return h.fail(ctx, span, payload.RaceID, fmt.Errorf("pacing round %d: %w", payload.Round, err))
		}
	}

	h.logger.DebugContext(ctx, "Rendering round",
		slog.String("race_id", payload.RaceID),
		slog.Int("round", payload.Round),
		slog.Int("total_rounds", payload.TotalRounds),
	)

	if err := h.renderer.PrintRound(payload.Status); err != nil {
		return h.fail(ctx, span, payload.RaceID, err)
	}
	return nil
}

// HandleRaceFinished prints the winners and reports completion.
func (h *RaceHandlers) HandleRaceFinished(ctx context.Context, payload *raceevents.RaceFinishedPayloadV1) error {
	ctx, span := h.tracer.Start(ctx, "RaceHandlers.HandleRaceFinished")
	defer span.End()

	h.logger.InfoContext(ctx, "Race finished",
		slog.String("race_id", payload.RaceID),
		slog.Any("winners", payload.Winners),
	)

	if err := h.renderer.PrintWinners(payload.Winners); err != nil {
		return h.fail(ctx, span, payload.RaceID, err)
	}

	h.complete(ctx, Completion{RaceID: payload.RaceID, Winners: payload.Winners})
	return nil
}

// HandleRaceFailed reports completion with the failure reason. The error line
// itself is printed by the caller that started the race.
func (h *RaceHandlers) HandleRaceFailed(ctx context.Context, payload *raceevents.RaceFailedPayloadV1) error {
	ctx, span := h.tracer.Start(ctx, "RaceHandlers.HandleRaceFailed")
	defer span.End()

	h.logger.WarnContext(ctx, "Race failed",
		slog.String("race_id", payload.RaceID),
		slog.String("reason", payload.Reason),
	)

	h.complete(ctx, Completion{
		RaceID: payload.RaceID,
		Err:    fmt.Errorf("%w: %s", ErrRaceFailed, payload.Reason),
	})
	return nil
}

func (h *RaceHandlers) Completions() <-chan Completion {
	return h.completions
}

// fail records a rendering error and ends the race's stream with it.
func (h *RaceHandlers) fail(ctx context.Context, span trace.Span, raceID string, err error) error {
	span.RecordError(err)
	h.logger.ErrorContext(ctx, "Failed to render race event",
		slog.String("race_id", raceID),
		slog.Any("error", err),
	)
	h.complete(ctx, Completion{RaceID: raceID, Err: err})
	return err
}

func (h *RaceHandlers) complete(ctx context.Context, c Completion) {
	select {
	case h.completions <- c:
	default:
		h.logger.WarnContext(ctx, "Dropping race completion, nobody is listening",
			slog.String("race_id", c.RaceID),
		)
	}
}

var _ Handlers = (*RaceHandlers)(nil)
