package dispatch

import (
	"sync"
)

// Runs a Queue on a dedicated background goroutine.
//
// Thread is the simplest way to execute tasks in the background: create one
// with NewThread, Dispatch to it, and Close it when done. Tasks run one at a
// time, in the order they were dispatched.
type Thread struct {
	queue *Queue
	done  chan struct{}
	once  sync.Once
}

// Creates a new Queue and starts a goroutine draining it with RunForever.
func NewThread(opts ...Option) *Thread {
	t := &Thread{
		queue: NewQueue(opts...),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		t.queue.RunForever()
	}()
	return t
}

// Returns the queue this thread is draining.
func (t *Thread) Queue() *Queue {
	return t.queue
}

// Queues fn for execution on the background goroutine. Returns true on
// success, or false if the thread is stopped.
func (t *Thread) Dispatch(fn func()) bool {
	return t.queue.Dispatch(fn)
}

// See (*Queue).DispatchTask.
func (t *Thread) DispatchTask(task *Task) bool {
	return t.queue.DispatchTask(task)
}

// Stops accepting new tasks; Dispatch will now return false. Queued tasks
// still run. It is safe to call Stop several times.
func (t *Thread) Stop() {
	t.queue.Stop()
}

// Returns a channel which is closed when the background goroutine exits.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// Stops the queue, waits for the queued tasks to run, and waits for the
// background goroutine to exit. Close may be called more than once and from
// several goroutines; every call returns after shutdown is complete. It must
// not be called from a task running on this thread, which would wait on
// itself.
func (t *Thread) Close() {
	t.once.Do(func() {
		t.queue.Stop()
		t.queue.WaitUntilDone()
		<-t.done
	})
}
