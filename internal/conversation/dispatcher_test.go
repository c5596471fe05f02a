package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

func TestDispatcherSerializesPerPhone(t *testing.T) {
	d := NewDispatcher(logging.Default())

	var mu sync.Mutex
	var order []int
	for i := 0; i < 20; i++ {
		i := i
		require.NoError(t, d.Enqueue("+521", func(context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	d.Close()

	require.Len(t, order, 20)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestDispatcherParallelAcrossPhones(t *testing.T) {
	d := NewDispatcher(logging.Default())
	defer d.Close()

	release := make(chan struct{})
	started := make(chan string, 2)

	require.NoError(t, d.Enqueue("+521", func(context.Context) {
		started <- "+521"
		<-release
	}))
	require.NoError(t, d.Enqueue("+522", func(context.Context) {
		started <- "+522"
		<-release
	}))

	// Both jobs run concurrently even though one of them is blocked.
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case phone := <-started:
			seen[phone] = true
		case <-time.After(2 * time.Second):
			t.Fatal("jobs did not run in parallel")
		}
	}
	close(release)
	assert.True(t, seen["+521"] && seen["+522"])
}

func TestDispatcherRejectsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(logging.Default())

	block := make(chan struct{})
	require.NoError(t, d.Enqueue("+521", func(context.Context) { <-block }))

	var err error
	for i := 0; i < phoneQueueBuffer+1; i++ {
		err = d.Enqueue("+521", func(context.Context) {})
		if err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")

	close(block)
	d.Close()
}

func TestDispatcherValidation(t *testing.T) {
	d := NewDispatcher(logging.Default())
	defer d.Close()

	assert.Error(t, d.Enqueue("", func(context.Context) {}))
	assert.Error(t, d.Enqueue("+521", nil))
}

func TestDispatcherClosedRejectsJobs(t *testing.T) {
	d := NewDispatcher(logging.Default())
	d.Close()
	assert.Error(t, d.Enqueue("+521", func(context.Context) {}))
}

func TestDispatcherDrainKeepsContextLive(t *testing.T) {
	d := NewDispatcher(logging.Default())

	release := make(chan struct{})
	var drainedRan bool
	var drainedErr error

	require.NoError(t, d.Enqueue("+521", func(context.Context) { <-release }))
	require.NoError(t, d.Enqueue("+521", func(ctx context.Context) {
		drainedRan = true
		drainedErr = ctx.Err()
	}))

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	d.Close()

	// Close waits for the queue goroutine, so both writes are visible here.
	require.True(t, drainedRan, "job queued before Close must still run")
	assert.NoError(t, drainedErr, "drained job must see a live context")
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(logging.Default())
	d.Close()
	d.Close()
	assert.Error(t, d.Enqueue("+521", func(context.Context) {}))
}

func TestDispatcherRecoversFromPanic(t *testing.T) {
	d := NewDispatcher(logging.Default())

	ran := make(chan struct{})
	require.NoError(t, d.Enqueue("+521", func(context.Context) { panic("boom") }))
	require.NoError(t, d.Enqueue("+521", func(context.Context) { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stalled after panic")
	}
	d.Close()
}
