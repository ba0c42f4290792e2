// Package tinycoro implements a minimal stackful coroutine primitive:
// an independent flow of execution with its own stack that a caller can
// switch into and out of an arbitrary number of times before it finishes.
//
// [New] takes a function and returns a [Handle]. The function does not run
// yet; each call to [Handle.Resume] transfers control into it and blocks
// until it either suspends itself with [Coroutine.Yield] or returns. The
// caller and the coroutine therefore take strict turns: exactly one of them
// is executing at any instant, and each hop between them is a plain
// transfer of control, not a message to a scheduler. There is no executor,
// no run queue and no preemption; this package is the building block such
// things are made of, not one of them.
//
// # Turn-Taking
//
// A coroutine has exactly three kinds of suspension point: the internal one
// it is born at (just short of invoking its function), every explicit
// [Coroutine.Yield], and the implicit final one when its function returns.
// [Handle.Resume] runs the coroutine from its current suspension point to
// the next one and reports which kind it was: [StillRunning] after a Yield,
// [Done] after the function returned. Once the function has returned the
// coroutine is terminated for good: [Handle.Terminated] reports true
// forever, and further calls to Resume return [ErrTerminated] without
// running anything.
//
// # Ownership
//
// A [Handle] is an exclusively owned object. Calling its methods from more
// than one goroutine at a time, like resuming a coroutine that is already
// running, violates the turn-taking contract and has no defined behavior.
// The [Coroutine] passed to the function is only valid inside that
// function, on the flow of execution it runs on.
//
// The coroutine's stack region is owned by the Handle and released by
// [Handle.Close]. A coroutine that is suspended partway through its
// function cannot be unwound without running it, so Close refuses to
// release anything in that state; see [Handle.Close] for the exact policy.
//
// # Failure
//
// Only two conditions are ordinary errors: resuming a terminated coroutine
// ([ErrTerminated]) and closing a suspended one ([ErrSuspended]).
// Everything else that can go wrong here (failing to reserve a stack,
// a failed context switch, yielding with no resume to return to) leaves
// control flow with nowhere valid to go, so it panics instead of returning.
// A panic inside the coroutine's function is not recovered and is not
// carried across the stack boundary; it crashes the process with the
// coroutine's stack trace.
package tinycoro
