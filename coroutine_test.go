package tinycoro_test

import (
	"errors"
	"testing"

	"github.com/willglynn/tinycoro"
)

func TestSequencing(t *testing.T) {
	seq := 0

	coro := tinycoro.New(func(co *tinycoro.Coroutine) {
		// In coroutine (1 => 2).
		if seq != 1 {
			t.Error("Coroutine did not run after the caller's first store.")
		}
		seq = 2

		co.Yield()

		// Back in coroutine (3 => 4).
		if seq != 3 {
			t.Error("Coroutine did not observe the caller's second store.")
		}
		seq = 4
	})

	// Nothing yet (0 => 1).
	if seq != 0 {
		t.Error("Coroutine ran before the first resume.")
	}
	if coro.Terminated() {
		t.FailNow()
	}
	seq = 1

	if st, err := coro.Resume(); err != nil || st != tinycoro.StillRunning {
		t.FailNow()
	}

	// Back from coroutine (2 => 3).
	if seq != 2 {
		t.Error("Caller did not observe the coroutine's first store.")
	}
	if coro.Terminated() {
		t.FailNow()
	}
	seq = 3

	if st, err := coro.Resume(); err != nil || st != tinycoro.Done {
		t.FailNow()
	}

	// Done (4!).
	if seq != 4 {
		t.Error("Caller did not observe the coroutine's final store.")
	}
	if !coro.Terminated() {
		t.FailNow()
	}

	if err := coro.Close(); err != nil {
		t.Error(err)
	}
}

func TestNeverResumed(t *testing.T) {
	seq := 0

	coro := tinycoro.New(func(co *tinycoro.Coroutine) {
		seq = 1
	})

	// Never actually resume it; closing must not run the function.
	if err := coro.Close(); err != nil {
		t.Error(err)
	}

	if seq != 0 {
		t.Error("Function of a never-resumed coroutine ran anyway.")
	}
}

func TestAlreadyTerminated(t *testing.T) {
	runs := 0

	coro := tinycoro.New(func(co *tinycoro.Coroutine) {
		runs++
	})

	if st, err := coro.Resume(); err != nil || st != tinycoro.Done {
		t.FailNow()
	}

	for i := 0; i < 3; i++ {
		if !coro.Terminated() {
			t.Error("Terminated did not stay true.")
		}
		if _, err := coro.Resume(); !errors.Is(err, tinycoro.ErrTerminated) {
			t.Error("Resume after termination did not return ErrTerminated.")
		}
	}

	if runs != 1 {
		t.Error("Function ran more than once.")
	}
}

func TestExactlyOnce(t *testing.T) {
	const yields = 100

	runs := 0
	steps := 0

	coro := tinycoro.New(func(co *tinycoro.Coroutine) {
		runs++
		for i := 0; i < yields; i++ {
			steps++
			co.Yield()
		}
	})

	n := 0
	for {
		st, err := coro.Resume()
		if err != nil {
			t.Fatal(err)
		}
		if st == tinycoro.Done {
			break
		}
		n++
	}

	if runs != 1 {
		t.Error("Function body did not execute exactly once.")
	}
	if steps != yields || n != yields {
		t.Error("Suspension count does not match the number of yields.")
	}
}

func TestIndependence(t *testing.T) {
	var a, b []int

	even := tinycoro.New(func(co *tinycoro.Coroutine) {
		for i := 0; i < 6; i += 2 {
			a = append(a, i)
			co.Yield()
		}
	})
	odd := tinycoro.New(func(co *tinycoro.Coroutine) {
		for i := 1; i < 6; i += 2 {
			b = append(b, i)
			co.Yield()
		}
	})

	// Drive one to completion before ever touching the other.
	for !even.Terminated() {
		if _, err := even.Resume(); err != nil {
			t.Fatal(err)
		}
	}

	if odd.Terminated() {
		t.Error("Resuming one coroutine affected the run state of another.")
	}
	if len(b) != 0 {
		t.Error("Coroutine ran without being resumed.")
	}

	for !odd.Terminated() {
		if _, err := odd.Resume(); err != nil {
			t.Fatal(err)
		}
	}

	if len(a) != 3 || len(b) != 3 {
		t.FailNow()
	}
}

func TestDefaultStackSize(t *testing.T) {
	run := func(newCoro func(func(*tinycoro.Coroutine)) *tinycoro.Handle) []int {
		var out []int
		coro := newCoro(func(co *tinycoro.Coroutine) {
			for i := 1; i <= 3; i++ {
				out = append(out, i)
				co.Yield()
			}
		})
		for !coro.Terminated() {
			if _, err := coro.Resume(); err != nil {
				t.Fatal(err)
			}
		}
		if err := coro.Close(); err != nil {
			t.Error(err)
		}
		return out
	}

	a := run(tinycoro.New)
	b := run(func(f func(*tinycoro.Coroutine)) *tinycoro.Handle {
		return tinycoro.NewWithStackSize(f, 512*1024)
	})

	if len(a) != len(b) {
		t.FailNow()
	}
	for i := range a {
		if a[i] != b[i] {
			t.Error("New and NewWithStackSize(512KiB) behaved differently.")
		}
	}
}

func TestClose(t *testing.T) {
	t.Run("Terminated", func(t *testing.T) {
		coro := tinycoro.New(func(co *tinycoro.Coroutine) {})
		if _, err := coro.Resume(); err != nil {
			t.Fatal(err)
		}
		if err := coro.Close(); err != nil {
			t.Error(err)
		}
		if err := coro.Close(); err != nil {
			t.Error("Close is not idempotent.")
		}
	})

	t.Run("NeverResumed", func(t *testing.T) {
		coro := tinycoro.New(func(co *tinycoro.Coroutine) {
			t.Error("Function ran during Close.")
		})
		if err := coro.Close(); err != nil {
			t.Error(err)
		}
		if !coro.Terminated() {
			t.Error("Disposed coroutine does not report terminated.")
		}
		if _, err := coro.Resume(); !errors.Is(err, tinycoro.ErrTerminated) {
			t.Error("Resume after dispose did not return ErrTerminated.")
		}
	})

	t.Run("Suspended", func(t *testing.T) {
		coro := tinycoro.New(func(co *tinycoro.Coroutine) {
			co.Yield()
		})
		if _, err := coro.Resume(); err != nil {
			t.Fatal(err)
		}

		if err := coro.Close(); !errors.Is(err, tinycoro.ErrSuspended) {
			t.Error("Close of a suspended coroutine did not refuse.")
		}

		// Still usable: run it to completion, then close for real.
		if st, err := coro.Resume(); err != nil || st != tinycoro.Done {
			t.FailNow()
		}
		if err := coro.Close(); err != nil {
			t.Error(err)
		}
	})
}

func TestStackSizes(t *testing.T) {
	for _, size := range []int{4 * 1024, 64 * 1024, 1024 * 1024} {
		coro := tinycoro.NewWithStackSize(func(co *tinycoro.Coroutine) {
			co.Yield()
		}, size)
		if st, err := coro.Resume(); err != nil || st != tinycoro.StillRunning {
			t.FailNow()
		}
		if st, err := coro.Resume(); err != nil || st != tinycoro.Done {
			t.FailNow()
		}
		if err := coro.Close(); err != nil {
			t.Error(err)
		}
	}
}
