package dispatch

import (
	"sync"
)

// A thread-safe FIFO queue of tasks.
//
// Any number of goroutines may call Dispatch. Tasks are executed, in the
// order they were dispatched, by whichever goroutine calls RunOnce or
// RunForever. Only one goroutine should drain a given queue at a time;
// several concurrent consumers are permitted but void the ordering
// guarantee between batches.
//
// The queue is Accepting when created. Stop moves it to Stopped, after which
// every Dispatch is rejected; once a stopped queue has been emptied by a
// consumer it is Drained. There is no way back to Accepting.
type Queue struct {
	mutex   sync.Mutex
	cond    *sync.Cond
	tasks   []Task
	stopped bool
	active  int // batches taken but not yet finished

	cfg config
}

// Creates a new task queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{cfg: newConfig(opts)}
	q.cond = sync.NewCond(&q.mutex)
	return q
}

// Returns the name this queue was configured with.
func (q *Queue) Name() string {
	return q.cfg.name
}

// Queues fn for execution. Returns true on success, or false if the queue
// is stopped, in which case fn is discarded and will never be called.
// Panics if fn is nil.
func (q *Queue) Dispatch(fn func()) bool {
	t := NewTask(fn)
	return q.DispatchTask(&t)
}

// Moves a task into the queue. Returns true on success, leaving t inert. If
// the queue is stopped, false is returned and t is left untouched with the
// caller. Panics with ErrInertTask if t is inert.
func (q *Queue) DispatchTask(t *Task) bool {
	if !t.Live() {
		panic(ErrInertTask)
	}

	q.mutex.Lock()
	if q.stopped {
		q.cfg.metrics.taskRejected(q.cfg.name)
		q.mutex.Unlock()
		q.cfg.logger.Debug("Task rejected by stopped queue", F("queue", q.cfg.name))
		return false
	}
	q.tasks = append(q.tasks, t.Move())
	q.cfg.metrics.taskDispatched(q.cfg.name, len(q.tasks))
	q.cond.Broadcast()
	q.mutex.Unlock()
	return true
}

// Stops accepting new tasks; Dispatch will now return false. Tasks which
// are already queued still run on the next drain. It is safe to call Stop
// several times.
func (q *Queue) Stop() {
	q.mutex.Lock()
	first := !q.stopped
	q.stopped = true
	pending := len(q.tasks)
	q.cond.Broadcast()
	q.mutex.Unlock()

	if first {
		q.cfg.logger.Info("Queue stopped",
			F("queue", q.cfg.name), F("pending", pending))
	}
}

// Returns true once Stop has been called.
func (q *Queue) Stopped() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.stopped
}

// Returns the number of tasks waiting to be run. Tasks in a batch which is
// currently executing are not counted.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.tasks)
}

// Blocks until the queue is stopped, empty, and no batch is still
// executing. WaitUntilDone does not run tasks itself: it blocks forever
// unless another goroutine is calling RunOnce or RunForever.
func (q *Queue) WaitUntilDone() {
	q.mutex.Lock()
	for !q.stopped || len(q.tasks) != 0 || q.active != 0 {
		q.cond.Wait()
	}
	q.mutex.Unlock()
}

// Runs every task which is currently queued, then returns. Tasks queued by
// those tasks are left for the next call. Never waits for new tasks.
func (q *Queue) RunOnce() {
	q.mutex.Lock()
	batch, shared := q.takeLocked()
	if len(batch) == 0 && q.stopped {
		q.cond.Broadcast()
	}
	q.mutex.Unlock()

	q.run(batch, shared)
}

// Runs tasks as they arrive, until the queue is stopped and empty. When it
// returns, the queue is guaranteed to be drained. This method is usually
// run on its own goroutine; see Thread.
func (q *Queue) RunForever() {
	for {
		q.mutex.Lock()
		for len(q.tasks) == 0 && !q.stopped {
			q.cond.Wait()
		}
		batch, shared := q.takeLocked()
		if len(batch) == 0 {
			q.cond.Broadcast()
			q.mutex.Unlock()
			q.cfg.logger.Debug("Queue drained", F("queue", q.cfg.name))
			return
		}
		q.mutex.Unlock()

		q.run(batch, shared)
	}
}

// Stops the queue and waits for the queued tasks to run.
//
// Beware that Close blocks forever unless another goroutine is calling
// RunOnce or RunForever. To flush a queue from the goroutine that owns it,
// call Stop followed by RunForever instead.
func (q *Queue) Close() {
	q.Stop()
	q.WaitUntilDone()
}

// Removes the whole sequence. Must be called with the mutex held. shared
// reports whether another batch was still executing when this one was taken.
func (q *Queue) takeLocked() (batch []Task, shared bool) {
	batch = q.tasks
	q.tasks = nil
	if len(batch) > 0 {
		shared = q.active > 0
		q.active++
	}
	q.cfg.metrics.batchTaken(q.cfg.name, len(batch))
	return batch, shared
}

// Invokes a batch obtained from takeLocked, in order. Must be called without
// the mutex held.
func (q *Queue) run(batch []Task, shared bool) {
	if len(batch) == 0 {
		return
	}
	if shared {
		q.cfg.logger.Warn("Queue is being drained by more than one goroutine",
			F("queue", q.cfg.name))
	}

	// Whatever panics out of the loop, the tasks not yet invoked go back to
	// the head of the queue.
	next := 0
	defer func() {
		q.requeue(batch[next:])
		q.finish()
	}()

	for i := range batch {
		next = i + 1
		pe := q.invoke(&batch[i])
		if pe == nil {
			continue
		}
		q.cfg.logger.Error("Task panicked",
			F("queue", q.cfg.name), F("panic", pe.Value))
		q.handlePanic(pe)
		if q.cfg.repanic {
			panic(pe)
		}
	}
}

func (q *Queue) handlePanic(pe *PanicError) {
	if q.cfg.onPanic == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			q.cfg.logger.Error("Panic handler panicked",
				F("queue", q.cfg.name), F("panic", r))
		}
	}()
	q.cfg.onPanic(pe)
}

func (q *Queue) invoke(t *Task) (pe *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			pe = newPanicError(r)
		}
		q.cfg.metrics.taskExecuted(q.cfg.name, pe != nil)
	}()
	t.Invoke()
	return nil
}

func (q *Queue) finish() {
	q.mutex.Lock()
	q.active--
	q.cond.Broadcast()
	q.mutex.Unlock()
}

// Puts the unexecuted tail of a batch back at the head of the queue.
func (q *Queue) requeue(rest []Task) {
	if len(rest) == 0 {
		return
	}
	q.mutex.Lock()
	tasks := make([]Task, 0, len(rest)+len(q.tasks))
	for i := range rest {
		tasks = append(tasks, rest[i].Move())
	}
	q.tasks = append(tasks, q.tasks...)
	q.cfg.metrics.setDepth(q.cfg.name, len(q.tasks))
	q.cond.Broadcast()
	q.mutex.Unlock()
}
