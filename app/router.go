package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	routerCloseTimeout   = 5 * time.Second
	routerStartupTimeout = 5 * time.Second
)

func newRouter(logger *slog.Logger) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: routerCloseTimeout,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}
	return router, nil
}

// startRouter runs the router in the background and waits until every
// handler is subscribed, so no event published afterwards is missed.
func (a *App) startRouter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.routerDone != nil {
		return nil
	}

	routerCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- a.Router.Run(routerCtx)
	}()

	timer := time.NewTimer(routerStartupTimeout)
	defer timer.Stop()

	select {
	case <-a.Router.Running():
		a.routerCancel = cancel
		a.routerDone = done
		a.Observability.Logger.DebugContext(ctx, "Watermill router running")
		return nil
	case err := <-done:
		cancel()
		return fmt.Errorf("watermill router stopped during startup: %w", err)
	case <-timer.C:
		cancel()
		return fmt.Errorf("watermill router did not start within %s", routerStartupTimeout)
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}
