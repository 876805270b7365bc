package pipeline

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pipeline",
	fx.Provide(NewDispatcher),
	fx.Provide(NewListener),
)

// Workers starts the notification listener. Kept separate from Module
// so an API-only process can still use the dispatcher for manual
// re-sends without consuming the channel.
var Workers = fx.Options(
	fx.Invoke(RunListener),
)

func RunListener(lc fx.Lifecycle, listener *Listener, log *zap.Logger) {
	supervise(lc, log, listener.Run)
}

// supervise runs the listener loop for the lifetime of the fx app. A
// single hook carries both sides: OnStart spawns the loop, OnStop
// cancels its context and waits for the loop to drain in-flight
// notifications before shutdown proceeds.
func supervise(lc fx.Lifecycle, log *zap.Logger, run func(context.Context) error) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := run(runCtx); err != nil {
					log.Error("notification listener stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
