package tinycoro

import (
	"errors"
	"unsafe"

	"github.com/willglynn/tinycoro/internal/ucontext"
)

// DefaultStackSize is the stack reservation used by [New].
const DefaultStackSize = 512 * 1024

// ErrTerminated is returned by [Handle.Resume] once the coroutine's
// function has returned. It is always safe to keep calling Resume after
// termination; every such call returns ErrTerminated.
var ErrTerminated = errors.New("tinycoro: coroutine already terminated")

// ErrSuspended is returned by [Handle.Close] when the coroutine is
// suspended in the middle of its function, which leaves nothing safe to
// release. See [Handle.Close].
var ErrSuspended = errors.New("tinycoro: coroutine is suspended")

// RunState reports how a coroutine returned control from a call to
// [Handle.Resume].
type RunState int

const (
	_ RunState = iota

	// StillRunning means the coroutine suspended itself with
	// [Coroutine.Yield] and may be resumed again.
	StillRunning

	// Done means the coroutine's function returned; the coroutine will
	// never run again.
	Done
)

// A Handle is the outside view of a coroutine. It owns the coroutine's
// stack region and native context, and it is the only way to run the
// coroutine.
//
// A Handle is exclusively owned: its methods must not be called
// concurrently. In particular there is never more than one Resume in
// flight, which is what guarantees exactly one of {caller, coroutine} is
// executing at any instant.
type Handle struct {
	ctx     *ucontext.Context
	stack   *ucontext.Stack
	link    *link
	resumed bool
}

// New creates a coroutine that will run f, with [DefaultStackSize] of
// stack. See [NewWithStackSize].
func New(f func(*Coroutine)) *Handle {
	return NewWithStackSize(f, DefaultStackSize)
}

// NewWithStackSize creates a coroutine that will run f on its own stack of
// the given size.
//
// The returned Handle's coroutine is suspended just short of invoking f;
// f does not run at all until the first [Handle.Resume]. Failure to reserve
// the stack or compose the context is fatal: there is no stack on which to
// continue, so NewWithStackSize panics rather than return a half-built
// Handle.
func NewWithStackSize(f func(*Coroutine), stackSize int) *Handle {
	stack, err := ucontext.NewStack(stackSize)
	if err != nil {
		panic("tinycoro: stack allocation failed: " + err.Error())
	}

	l := &link{state: linkReady}
	co := &Coroutine{link: l}

	// The context's argument slots are word-sized, so the function is
	// boxed and passed by address. The trampoline empties the box before
	// anything else; see the bootstrap below.
	fbox := new(func(*Coroutine))
	*fbox = f

	h := &Handle{
		ctx:   ucontext.Make(stack, trampoline, unsafe.Pointer(co), unsafe.Pointer(fbox)),
		stack: stack,
		link:  l,
	}

	// Bootstrap: switch in once so the trampoline can move co and f off
	// the boxes and onto its own side, then let it yield straight back.
	// After this the coroutine shares nothing with this frame except the
	// link, and the first real Resume re-enters just before f.
	h.switchIn()

	return h
}

// Resume transfers control into the coroutine and blocks until it either
// suspends or finishes.
//
// It returns [StillRunning] if the coroutine suspended itself with
// [Coroutine.Yield], [Done] if its function returned during this call, and
// [ErrTerminated] if the function had already returned before this call.
func (h *Handle) Resume() (RunState, error) {
	if h.link.terminated() {
		return 0, ErrTerminated
	}

	h.resumed = true
	h.switchIn()

	if h.link.terminated() {
		return Done, nil
	}
	return StillRunning, nil
}

// Terminated reports whether the coroutine's function has returned. It
// never blocks, and once it returns true it returns true forever.
func (h *Handle) Terminated() bool {
	return h.link.terminated()
}

// switchIn records the pending transfer in the link and performs it.
// Control comes back here when the coroutine suspends or terminates.
func (h *Handle) switchIn() {
	here := ucontext.Capture()
	h.link.call(h.ctx, here)
	if err := ucontext.Swap(here, h.ctx); err != nil {
		panic("tinycoro: context switch failed: " + err.Error())
	}
}

// Close releases the coroutine's stack region. It is idempotent, and it is
// the caller's choice when to call it:
//
//   - If the coroutine has terminated, Close releases the stack and
//     returns nil.
//   - If the coroutine was never resumed, Close unwinds the trampoline
//     without ever invoking the coroutine's function, releases the stack,
//     and returns nil. The function observably never runs.
//   - If the coroutine is suspended partway through its function, there is
//     no way to unwind its stack without running it, so Close refuses with
//     [ErrSuspended] and releases nothing. The Handle remains usable: the
//     coroutine may still be resumed to completion and then closed. A
//     Handle abandoned in this state retains its stack and its suspended
//     state until process exit.
func (h *Handle) Close() error {
	switch {
	case h.stack == nil:
		return nil
	case h.link.terminated():
	case !h.resumed:
		// The trampoline is parked at its bootstrap yield and has not
		// taken the user's function out of scope yet; ask it to unwind.
		h.link.disposing = true
		h.switchIn()
	default:
		return ErrSuspended
	}

	stack := h.stack
	h.stack = nil
	return stack.Free()
}
