package race

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Black-And-White-Club/racing-car/app/eventbus"
	raceservice "github.com/Black-And-White-Club/racing-car/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	raceconsole "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/console"
	racehandlers "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/handlers"
	racemetrics "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/metrics"
	racerandom "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/random"
	racerouter "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/router"
	"github.com/Black-And-White-Club/racing-car/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
)

// Options tunes the race module.
type Options struct {
	// Seed fixes the random source. Zero draws a fresh seed.
	Seed int64
	// RoundInterval paces rendered rounds.
	RoundInterval time.Duration
	// Source overrides the seeded source, for replays and tests.
	Source racedomain.RandomSource
}

// Module represents the race module.
type Module struct {
	RaceService raceservice.Service
	RaceRouter  *racerouter.RaceRouter
	Handlers    racehandlers.Handlers
	Presenter   *raceconsole.Presenter
	Seed        int64
	obs         *observability.Observability
}

// NewRaceModule creates and initializes a new race module.
func NewRaceModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	out io.Writer,
	opts Options,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "race.NewRaceModule initializing")

	// 1. Initialize Engine and random source
	engine := racedomain.NewEngine()

	var seed int64
	source := opts.Source
	if source == nil {
		seeded, err := racerandom.NewSeededSource(opts.Seed)
		if err != nil {
			return nil, fmt.Errorf("failed to create random source: %w", err)
		}
		seed = seeded.Seed()
		source = seeded
	}

	// 2. Initialize Metrics
	var metrics racemetrics.RaceMetrics = racemetrics.NewNoop()
	if obs.Registry != nil {
		m, err := racemetrics.NewPrometheusMetrics(obs.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register race metrics: %w", err)
		}
		metrics = m
	}

	// 3. Initialize Service
	service := raceservice.NewRaceService(engine, source, eventBus, logger, metrics, tracer)

	// 4. Initialize Handlers
	presenter := raceconsole.NewPresenter(out)
	handlers := racehandlers.NewRaceHandlers(
		presenter,
		racehandlers.NewIntervalPacer(opts.RoundInterval),
		logger,
		tracer,
	)

	// 5. Initialize Router
	var registry prometheus.Registerer
	if obs.Registry != nil {
		registry = obs.Registry
	}
	raceRouter := racerouter.NewRaceRouter(logger, router, eventBus, tracer, registry)

	// 6. Configure the router with handlers
	if err := raceRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure race router: %w", err)
	}

	return &Module{
		RaceService: service,
		RaceRouter:  raceRouter,
		Handlers:    handlers,
		Presenter:   presenter,
		Seed:        seed,
		obs:         obs,
	}, nil
}

// Close shuts down the race module.
func (m *Module) Close() error {
	logger := m.obs.Logger
	logger.Info("Stopping race module")

	if m.RaceRouter != nil {
		if err := m.RaceRouter.Close(); err != nil {
			logger.Error("Error closing RaceRouter from module", "error", err)
			return fmt.Errorf("error closing RaceRouter: %w", err)
		}
	}

	logger.Info("Race module stopped")
	return nil
}
