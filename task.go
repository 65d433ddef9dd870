package dispatch

import (
	"fmt"
	"unsafe"
)

// The largest captured state, in bytes, that Bind accepts: four machine
// words.
const TaskCapacity = 4 * unsafe.Sizeof(uintptr(0))

// The operations every stored callable provides.
type callable interface {
	invoke()
}

type plainFunc func()

func (f plainFunc) invoke() { f() }

type boundFunc[S any] struct {
	state S
	fn    func(S)
}

func (b *boundFunc[S]) invoke() { b.fn(b.state) }

// Holds the callable of a task. Copies of a Task share their slot, so
// whichever copy takes the callable first leaves all of them inert.
type slot struct {
	c callable
}

// A deferred, move-only action with no arguments and no result.
//
// A task is either live, holding a callable, or inert. The zero value is
// inert, as is a task which has been moved from or invoked. Ownership is
// transferred with Move. Copying a Task by assignment does not duplicate
// the callable: it runs at most once, and invoking any copy after that
// panics with ErrInertTask.
type Task struct {
	s *slot
}

// Creates a new task which will call fn. Panics if fn is nil.
func NewTask(fn func()) Task {
	if fn == nil {
		panic(fmt.Errorf("NewTask: nil function: %w", ErrInertTask))
	}
	return Task{s: &slot{c: plainFunc(fn)}}
}

// Creates a new task which will call fn(state). The state is captured by
// value and must fit in TaskCapacity bytes; a larger state is a programming
// error and panics with ErrCapacityExceeded.
func Bind[S any](state S, fn func(S)) Task {
	if fn == nil {
		panic(fmt.Errorf("Bind: nil function: %w", ErrInertTask))
	}
	if size := unsafe.Sizeof(state); size > TaskCapacity {
		panic(fmt.Errorf("%w: %T is %d bytes, capacity is %d",
			ErrCapacityExceeded, state, size, TaskCapacity))
	}
	return Task{s: &slot{c: &boundFunc[S]{state: state, fn: fn}}}
}

// Returns true if the task holds a callable.
func (t *Task) Live() bool {
	return t.s != nil && t.s.c != nil
}

// Runs the stored callable. The task is inert once Invoke has been called,
// even if the callable panics. Panics with ErrInertTask if the task is inert.
func (t *Task) Invoke() {
	c := t.take()
	c.invoke()
}

// Transfers the callable to a new task, leaving t and every copy of t
// inert. Panics with ErrInertTask if t is inert.
func (t *Task) Move() Task {
	return Task{s: &slot{c: t.take()}}
}

func (t *Task) take() callable {
	if !t.Live() {
		panic(ErrInertTask)
	}
	c := t.s.c
	t.s.c = nil
	t.s = nil
	return c
}
