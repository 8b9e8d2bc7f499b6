package baseworker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run(`повторный запуск и остановка`, func(t *testing.T) {
		var runs atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			NewInstance("test", time.Millisecond, 5*time.Millisecond).Run(ctx, func(ctx context.Context) {
				runs.Add(1)
			})
			close(done)
		}()
		require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("воркер не остановился")
		}
	})

	t.Run(`паника не останавливает воркер`, func(t *testing.T) {
		var runs atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go NewInstance("test", time.Millisecond, time.Millisecond).Run(ctx, func(ctx context.Context) {
			if runs.Add(1) == 1 {
				panic("сбой")
			}
		})
		require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, time.Millisecond)
	})
}
