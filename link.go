package tinycoro

import "github.com/willglynn/tinycoro/internal/ucontext"

type linkState int

const (
	_ linkState = iota
	linkReady
	linkCalled
	linkTerminated
)

// A link is the rendezvous cell shared by the two sides of one coroutine.
// It records, at any instant, where control must go when the next switch
// occurs.
//
// The cell is in exactly one state at all times:
//
//   - Ready: the coroutine is not currently switched into; there is no
//     valid return point.
//   - Called: one side has transferred control to the other. inner is the
//     coroutine's own context (where its progress is saved when it
//     suspends), outer is the snapshot of the resume call that is waiting
//     for it.
//   - Terminated: the coroutine's function has returned. Absorbing; the
//     cell never leaves this state.
//
// Although both sides hold a reference, ownership of the value rotates:
// only the side that last received control may mutate the cell, and every
// transfer of that right rides a context switch, which orders the accesses.
// No locking is needed or wanted here.
type link struct {
	state linkState
	inner *ucontext.Context
	outer *ucontext.Context

	// disposing asks the trampoline to unwind without running the user's
	// function. Written by Handle.Close while the caller owns the cell,
	// read by the trampoline at the bootstrap suspension point.
	disposing bool
}

// call records a pending transfer into the coroutine. Only the handle side
// calls this, immediately before switching in.
func (l *link) call(inner, outer *ucontext.Context) {
	l.state = linkCalled
	l.inner = inner
	l.outer = outer
}

// takeCalled empties the cell back to Ready and returns the recorded pair.
// Only the coroutine side calls this, immediately before suspending.
func (l *link) takeCalled() (inner, outer *ucontext.Context) {
	if l.state != linkCalled {
		panic("tinycoro: yield with no active resume to return to")
	}
	inner, outer = l.inner, l.outer
	l.state = linkReady
	l.inner = nil
	l.outer = nil
	return inner, outer
}

// takeTerminate moves the cell to its final state and returns the waiting
// resume point. Only the coroutine side calls this, exactly once,
// immediately before its final switch out.
func (l *link) takeTerminate() (outer *ucontext.Context) {
	if l.state != linkCalled {
		panic("tinycoro: coroutine finished with no active resume to return to")
	}
	outer = l.outer
	l.state = linkTerminated
	l.inner = nil
	l.outer = nil
	return outer
}

func (l *link) terminated() bool {
	return l.state == linkTerminated
}
