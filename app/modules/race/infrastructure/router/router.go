package racerouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	raceevents "github.com/Black-And-White-Club/racing-car/app/modules/race/events"
	racehandlers "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RaceRouter handles Watermill handler registration for race events.
type RaceRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewRaceRouter creates a new RaceRouter. A nil registry disables router metrics.
func NewRaceRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	tracer trace.Tracer,
	prometheusRegistry prometheus.Registerer,
) *RaceRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &RaceRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure adds middleware and registers the race handlers.
func (r *RaceRouter) Configure(_ context.Context, handlers racehandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *RaceRouter) registerHandlers(handlers racehandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering race module handlers",
		slog.String("started_topic", raceevents.RaceStartedV1),
		slog.String("round_topic", raceevents.RaceRoundCompletedV1),
		slog.String("finished_topic", raceevents.RaceFinishedV1),
		slog.String("failed_topic", raceevents.RaceFailedV1),
	)

	registerHandler(deps, raceevents.RaceStartedV1, handlers.HandleRaceStarted)
	registerHandler(deps, raceevents.RaceRoundCompletedV1, handlers.HandleRoundCompleted)
	registerHandler(deps, raceevents.RaceFinishedV1, handlers.HandleRaceFinished)
	registerHandler(deps, raceevents.RaceFailedV1, handlers.HandleRaceFailed)

	r.logger.Info("Race module handlers registered successfully")
}

// registerHandler decodes the JSON payload into T and hands it to handler.
// Undecodable messages, handler errors and panics are logged and acked.
// Handler errors already reach the caller through the completion channel, and
// a nack would make the in-process bus redeliver forever.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) error,
) {
	handlerName := "race." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		func(msg *message.Message) (err error) {
			ctx, span := deps.tracer.Start(msg.Context(), handlerName, trace.WithAttributes(
				attribute.String("message_id", msg.UUID),
				attribute.String("correlation_id", middleware.MessageCorrelationID(msg)),
			))
			defer span.End()

			defer func() {
				if r := recover(); r != nil {
					panicErr := fmt.Errorf("panic in %s: %v", handlerName, r)
					span.RecordError(panicErr)
					deps.logger.ErrorContext(ctx, "Critical panic recovered",
						slog.String("handler", handlerName),
						slog.String("message_id", msg.UUID),
						slog.Any("error", panicErr),
					)
					err = nil
				}
			}()

			payload := new(T)
			if err := json.Unmarshal(msg.Payload, payload); err != nil {
				err = fmt.Errorf("failed to unmarshal %s payload: %w", topic, err)
				span.RecordError(err)
				deps.logger.ErrorContext(ctx, "Dropping undecodable message",
					slog.String("handler", handlerName),
					slog.String("message_id", msg.UUID),
					slog.Any("error", err),
				)
				return nil
			}

			if err := handler(ctx, payload); err != nil {
				deps.logger.ErrorContext(ctx, "Error processing message",
					slog.String("handler", handlerName),
					slog.String("message_id", msg.UUID),
					slog.String("race_id", msg.Metadata.Get(raceevents.MetadataRaceID)),
					slog.Any("error", err),
				)
			}
			return nil
		},
	)
}

// Close shuts down the router.
func (r *RaceRouter) Close() error {
	return r.Router.Close()
}
