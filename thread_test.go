package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread(t *testing.T) {
	var log record
	th := NewThread()
	assert.True(t, th.Dispatch(log.add("Hello")))
	assert.True(t, th.Dispatch(log.add(" world!")))
	th.Close()

	assert.Equal(t, "Hello world!", log.String())
	select {
	case <-th.Done():
	default:
		t.Fatal("Close returned before the worker exited")
	}
}

func TestThreadStop(t *testing.T) {
	var log record
	th := NewThread()
	th.Dispatch(log.add("A"))
	th.Stop()
	th.Stop()
	assert.False(t, th.Dispatch(log.add("B")))

	task := NewTask(log.add("C"))
	assert.False(t, th.DispatchTask(&task))
	assert.True(t, task.Live())

	th.Close()
	assert.Equal(t, "A", log.String())
	assert.True(t, th.Queue().Stopped())
}

func TestThreadRecursion(t *testing.T) {
	var countA, countB atomic.Int64

	var increment func(counter *atomic.Int64, th *Thread)
	increment = func(counter *atomic.Int64, th *Thread) {
		counter.Add(1)
		th.Dispatch(func() {
			increment(counter, th)
		})
	}

	th := NewThread()
	th.Dispatch(func() { increment(&countA, th) })
	th.Dispatch(func() { increment(&countB, th) })
	time.Sleep(10 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		th.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	a, b := countA.Load(), countB.Load()
	assert.True(t, a >= 0)
	assert.True(t, b >= 0)
	assert.True(t, a+b > 0)
	// Both chains alternate within each batch.
	assert.InDelta(t, a, b, 1)
}

func TestThreadCloseConcurrent(t *testing.T) {
	var executed atomic.Int64
	th := NewThread()
	for i := 0; i < 100; i++ {
		th.Dispatch(func() {
			executed.Add(1)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			th.Close()
			assert.Equal(t, int64(100), executed.Load())
		}()
	}
	wg.Wait()
	th.Close()
}

func TestThreadRunsOnOneGoroutine(t *testing.T) {
	th := NewThread()
	var (
		running atomic.Int32
		overlap atomic.Bool
	)
	for i := 0; i < 200; i++ {
		th.Dispatch(func() {
			if running.Add(1) > 1 {
				overlap.Store(true)
			}
			running.Add(-1)
		})
	}
	th.Close()
	require.False(t, overlap.Load())
}

func TestThreadPanicKeepsWorker(t *testing.T) {
	var log record
	var panics atomic.Int64
	th := NewThread(WithPanicHandler(func(*PanicError) {
		panics.Add(1)
	}))
	th.Dispatch(func() {
		panic("boom")
	})
	th.Dispatch(log.add("A"))
	th.Close()

	assert.Equal(t, "A", log.String())
	assert.Equal(t, int64(1), panics.Load())
}
