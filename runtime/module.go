package runtime

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RuntimeParams defines the dependencies for the runtime.
type RuntimeParams struct {
	fx.In

	Config Config

	Log *zap.Logger
}

// NewLifecycleRuntime creates a runtime tied to the fx lifecycle: workers
// are warmed on start and stopped on shutdown.
func NewLifecycleRuntime(params RuntimeParams, lc fx.Lifecycle) (Runtime, error) {
	rt, err := New(params.Config, params.Log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return rt.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return rt.Shutdown(ctx)
		},
	})

	return rt, nil
}

func Module() fx.Option {
	return fx.Module(
		"runtime",
		fx.Provide(NewLifecycleRuntime),
	)
}
