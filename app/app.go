package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Black-And-White-Club/racing-car/app/eventbus"
	"github.com/Black-And-White-Club/racing-car/app/modules/race"
	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
	raceconsole "github.com/Black-And-White-Club/racing-car/app/modules/race/infrastructure/console"
	"github.com/Black-And-White-Club/racing-car/app/observability"
	"github.com/Black-And-White-Club/racing-car/config"
	"github.com/ThreeDotsLabs/watermill/message"
)

// App wires the race module to a console.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	EventBus      eventbus.EventBus
	Router        *message.Router
	RaceModule    *race.Module

	prompter     *raceconsole.Prompter
	routerCancel context.CancelFunc
	routerDone   chan error
}

// Option customises NewApp.
type Option func(*appOptions)

type appOptions struct {
	logOutput  io.Writer
	source     racedomain.RandomSource
	obsOptions []observability.Option
}

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *appOptions) { o.logOutput = w }
}

// WithRandomSource replaces the seeded random source.
func WithRandomSource(src racedomain.RandomSource) Option {
	return func(o *appOptions) { o.source = src }
}

// WithObservabilityOptions forwards options to observability.Init.
func WithObservabilityOptions(opts ...observability.Option) Option {
	return func(o *appOptions) { o.obsOptions = append(o.obsOptions, opts...) }
}

// NewApp initializes the application. Prompts and answers use in and out;
// race output goes to out.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := appOptions{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	obs, err := observability.Init(cfg.Observability, o.logOutput, o.obsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	bus := eventbus.NewEventBus(eventbus.Config{
		OutputBuffer:  cfg.EventBus.OutputBuffer,
		BlockUntilAck: true,
	}, obs.Logger)

	router, err := newRouter(obs.Logger)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	module, err := race.NewRaceModule(ctx, obs, bus, router, out, race.Options{
		Seed:          cfg.Race.Seed,
		RoundInterval: cfg.Race.RoundInterval,
		Source:        o.source,
	})
	if err != nil {
		_ = router.Close()
		_ = bus.Close()
		return nil, fmt.Errorf("failed to initialize race module: %w", err)
	}

	return &App{
		Config:        cfg,
		Observability: obs,
		EventBus:      bus,
		Router:        router,
		RaceModule:    module,
		prompter:      raceconsole.NewPrompter(in, out),
	}, nil
}

// Close shuts the router, event bus and tracer provider down. The router is
// closed only if Run started it.
func (a *App) Close() error {
	logger := a.Observability.Logger
	var errs []error

	if a.routerDone != nil {
		a.routerCancel()
		if err := a.RaceModule.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := <-a.routerDone; err != nil {
			errs = append(errs, fmt.Errorf("router stopped with error: %w", err))
		}
		a.routerCancel = nil
		a.routerDone = nil
	}
	if err := a.EventBus.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Observability.Shutdown(context.Background()); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("Application shut down with errors", "error", err)
		return err
	}
	logger.Info("Application shut down gracefully")
	return nil
}
