package tinycoro

import (
	"unsafe"

	"github.com/willglynn/tinycoro/internal/ucontext"
)

// A Coroutine is the inside view of a coroutine: it is passed to the
// function given to [New] and lets that function suspend itself.
//
// A Coroutine is only meaningful while its function runs. It must not be
// retained past the function's return, and its methods must only be called
// from the flow of execution the function runs on.
type Coroutine struct {
	link *link
}

// Yield suspends the coroutine and returns control to the [Handle.Resume]
// call that is currently running it; that call returns [StillRunning].
// Yield blocks until the next Resume, then returns.
//
// Calling Yield when no resume is active has no valid place to transfer
// control to and panics.
func (co *Coroutine) Yield() {
	co.yieldBack()
}

func (co *Coroutine) yieldBack() {
	inner, outer := co.link.takeCalled()
	if err := ucontext.Swap(inner, outer); err != nil {
		panic("tinycoro: context switch failed: " + err.Error())
	}
}

// terminate flips the link to its final state and performs the last switch
// out. It runs after the user's function (and everything it captured) has
// gone out of scope on the coroutine's own stack; nothing ever switches
// back in, so the caller must simply return afterwards.
func (co *Coroutine) terminate() {
	outer := co.link.takeTerminate()
	ucontext.Set(outer)
}

// trampoline is the fixed entry point installed into every coroutine's
// context. It is independent of the shape of user code: arg1 is the address
// of the boxed [Coroutine] and arg2 the address of the boxed function, both
// placed on the heap by the constructor.
//
// The constructor's frame cannot be trusted to outlive the coroutine, so
// the handoff is two-phase: the trampoline first takes both values out of
// their boxes into locals on its own side, then yields straight back so the
// constructor can return. Every later resume re-enters just after that
// yield, which is where the user's function finally runs.
func trampoline(arg1, arg2 unsafe.Pointer) {
	co := (*Coroutine)(arg1)

	fbox := (*func(*Coroutine))(arg2)
	f := *fbox
	*fbox = nil

	co.yieldBack()

	if !co.link.disposing {
		f(co)
	}

	co.terminate()
}
