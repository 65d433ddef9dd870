// dispatch is a task dispatch queue for Go programs. It collects deferred
// actions from any number of goroutines and runs them, one at a time and in
// the order they were submitted, on a single consumer goroutine.
//
// The simplest way to use it is a Thread, which owns a queue and a
// background goroutine draining it:
//
//	import "git.sr.ht/~sircmpwn/dispatch"
//
//	// ...
//	t := dispatch.NewThread()
//	defer t.Close()
//	t.Dispatch(func() {
//		// Runs on the background goroutine
//	})
//
// Close stops the thread from accepting new work, waits for everything
// already queued to run, and then waits for the goroutine to exit.
//
// To funnel work into a loop you already own, use a Queue directly and call
// RunOnce from the loop:
//
//	q := dispatch.NewQueue()
//	for running {
//		// ...
//		q.RunOnce()
//	}
//	q.Stop()
//	q.RunForever() // flush whatever is left
//
// Tasks may Dispatch to the queue they are running on; the queue's lock is
// never held while a task runs. A task needing the queue must be handed it
// explicitly, typically by capturing it or by binding it as state:
//
//	var tick func(q *dispatch.Queue)
//	tick = func(q *dispatch.Queue) {
//		t := dispatch.Bind(q, tick)
//		q.DispatchTask(&t)
//	}
//
// A panic in a task is recovered and reported to the logger and to the
// handler set with WithPanicHandler; the rest of the batch carries on. Use
// WithRepanic to let panics propagate instead.
package dispatch
