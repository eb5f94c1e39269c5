package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCycler struct {
	mu     sync.Mutex
	cycles int
	block  chan struct{}
}

func (c *countingCycler) Dispatch(ctx context.Context) uint64 {
	c.mu.Lock()
	c.cycles++
	n := c.cycles
	c.mu.Unlock()

	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
		}
	}
	return uint64(n)
}

func (c *countingCycler) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycles
}

func TestSchedulerFiresImmediatelyThenOnInterval(t *testing.T) {
	cycler := &countingCycler{}
	scheduler := NewScheduler(cycler, 20*time.Millisecond, nil)
	assert.Equal(t, Idle, scheduler.State())

	scheduler.Start()
	defer scheduler.Shutdown()

	assert.Equal(t, Polling, scheduler.State())
	require.Eventually(t, func() bool { return cycler.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerTicksDoNotWaitForPreviousCycle(t *testing.T) {
	cycler := &countingCycler{block: make(chan struct{})}
	scheduler := NewScheduler(cycler, 10*time.Millisecond, nil)

	scheduler.Start()
	require.Eventually(t, func() bool { return cycler.count() >= 3 }, time.Second, 5*time.Millisecond,
		"blocked cycles must not hold back later ticks")

	done := make(chan struct{})
	go func() {
		scheduler.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}
	assert.Equal(t, Idle, scheduler.State())
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	cycler := &countingCycler{}
	scheduler := NewScheduler(cycler, time.Hour, nil)

	scheduler.Start()
	scheduler.Start()
	// the interval is an hour, so this cycle can only be the immediate one
	require.Eventually(t, func() bool { return cycler.count() == 1 }, time.Second, time.Millisecond)

	scheduler.Shutdown()
	scheduler.Shutdown()
	assert.Equal(t, 1, cycler.count())
}

func TestSchedulerDefaults(t *testing.T) {
	scheduler := NewScheduler(&countingCycler{}, 0, nil)
	assert.Equal(t, DefaultInterval, scheduler.Interval())
	assert.Equal(t, "idle", scheduler.State().String())

	scheduler.Shutdown()
	scheduler.Start()
	assert.Equal(t, Idle, scheduler.State(), "a shut down scheduler never starts")
}

func TestSchedulerConcurrentStartAndShutdown(t *testing.T) {
	for i := 0; i < 50; i++ {
		cycler := &countingCycler{block: make(chan struct{})}
		scheduler := NewScheduler(cycler, time.Millisecond, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			scheduler.Start()
		}()
		go func() {
			defer wg.Done()
			scheduler.Shutdown()
		}()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Start and Shutdown deadlocked")
		}

		// whichever won, the scheduler ends stopped and nothing keeps running
		scheduler.Shutdown()
		assert.Equal(t, Idle, scheduler.State())
		settled := cycler.count()
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, settled, cycler.count())
	}
}

func TestSchedulerTriggerAfterShutdownIsIgnored(t *testing.T) {
	cycler := &countingCycler{}
	scheduler := NewScheduler(cycler, time.Hour, nil)
	scheduler.Shutdown()

	scheduler.trigger()
	scheduler.Start()
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 0, cycler.count())
	assert.Equal(t, Idle, scheduler.State())
}
