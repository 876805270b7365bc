package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestSupervise_StopCancelsRunAndWaitsForExit(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	started := make(chan context.Context, 1)
	exited := make(chan struct{})
	supervise(lc, zap.NewNop(), func(ctx context.Context) error {
		started <- ctx
		<-ctx.Done()
		close(exited)
		return nil
	})

	lc.RequireStart()

	var runCtx context.Context
	select {
	case runCtx = <-started:
	case <-time.After(time.Second):
		t.Fatal("listener loop never started")
	}
	require.NoError(t, runCtx.Err())

	lc.RequireStop()

	select {
	case <-exited:
	default:
		t.Fatal("stop returned before the listener loop exited")
	}
	assert.ErrorIs(t, runCtx.Err(), context.Canceled)
}

func TestSupervise_StopHonorsShutdownDeadline(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	blocked := make(chan struct{})
	supervise(lc, zap.NewNop(), func(ctx context.Context) error {
		<-blocked
		return nil
	})
	defer close(blocked)

	lc.RequireStart()

	stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, lc.Stop(stopCtx), context.DeadlineExceeded)
}
