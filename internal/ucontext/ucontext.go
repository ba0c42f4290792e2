// Package ucontext is the native context-switch capability consumed by
// package tinycoro, named after the <ucontext.h> API it stands in for.
//
// A [Context] is an opaque suspension point. [Capture] snapshots the current
// point of execution, [Make] composes a context that will invoke an entry
// function on its own stack when first switched into, [Swap] transfers
// control from one context to another, and [Set] performs a final transfer
// with no way back.
//
// This port backs every composed context with a goroutine and implements
// suspension as unbuffered-channel rendezvous. Exactly one side of a switch
// runs at any instant, and each switch establishes a happens-before edge, so
// callers may mutate shared state across switches without further
// synchronization. The Go runtime supplies the machine stack of the backing
// goroutine; the [Stack] installed by [Make] is the region the context owns,
// and it must outlive every switch into that context.
package ucontext

import (
	"unsafe"

	"github.com/pkg/errors"
)

// A Context records a point of execution that control can later be
// transferred to. The zero value is not useful; obtain a Context from
// [Capture] or [Make].
type Context struct {
	resume chan struct{}

	// Set by Make only.
	entry   func(arg1, arg2 unsafe.Pointer)
	arg1    unsafe.Pointer
	arg2    unsafe.Pointer
	stack   *Stack
	started bool
}

// Capture returns a Context representing the current point of execution.
// A subsequent [Swap] into it resumes whatever flow later parks on it.
func Capture() *Context {
	return &Context{resume: make(chan struct{})}
}

// Make composes a Context that, when first switched into, invokes
// entry(arg1, arg2) on a fresh flow of execution owning stack.
//
// The entry function must coordinate every suspension through [Swap] and
// must end with a call to [Set] followed by an ordinary return; after that
// return the context is dead and must never be switched into again.
//
// The two argument slots are word-sized, as with makecontext. Anything
// larger than a word must be boxed and passed by address; the boxes are kept
// alive until entry has taken them.
func Make(stack *Stack, entry func(arg1, arg2 unsafe.Pointer), arg1, arg2 unsafe.Pointer) *Context {
	return &Context{
		resume: make(chan struct{}),
		entry:  entry,
		arg1:   arg1,
		arg2:   arg2,
		stack:  stack,
	}
}

// Swap transfers control to the context to, then blocks the current flow of
// execution until some later switch targets save. The same Context may be
// parked on repeatedly; each [Swap] or [Set] into it wakes the most recent
// parker.
//
// Switching into a context whose entry function has already returned is a
// contract violation with no defined behavior. Swap fails if the target's
// stack region has been freed; callers must treat a non-nil error as fatal.
func Swap(save, to *Context) error {
	if err := to.enter(); err != nil {
		return err
	}
	<-save.resume
	return nil
}

// Set transfers control to the context to without saving the current point
// of execution. Unlike its C counterpart Set returns, but the calling flow
// is dead the moment it does: it must unwind and exit without performing any
// further switches. Failure to enter the target is fatal, as there is no
// saved state to report an error to.
func Set(to *Context) {
	if err := to.enter(); err != nil {
		panic("tinycoro(ucontext): " + err.Error())
	}
}

func (c *Context) enter() error {
	if c.stack != nil && c.stack.mem == nil {
		return errors.New("switch into a context whose stack region was freed")
	}
	if c.entry != nil && !c.started {
		c.started = true
		go c.entry(c.arg1, c.arg2)
		// The argument slots are dead once the entry has them.
		c.arg1, c.arg2 = nil, nil
		return nil
	}
	c.resume <- struct{}{}
	return nil
}
