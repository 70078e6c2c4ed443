package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconciler_RunTicksUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond, Logger: discardLogger()}, func() {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("resync loop did not stop")
	}
}

func TestReconciler_RecoversPanics(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, func() { panic("boom") })
	assert.NotPanics(t, r.tick)
	assert.Equal(t, 10*time.Second, r.interval)
}
