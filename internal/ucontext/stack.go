package ucontext

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// A Stack is a page-aligned region of memory reserved for use as a context's
// stack. The page below the usable region is protected, so a flow that runs
// off the low end faults instead of silently corrupting neighboring memory.
//
// A Stack is exclusively owned by whichever context it is installed into via
// [Make]; it must not be read or written directly, and it must not be freed
// while that context can still be switched into.
type Stack struct {
	mem  []byte
	size int
}

// NewStack reserves a stack region of at least size bytes, rounded up to
// whole pages, plus one guard page.
func NewStack(size int) (*Stack, error) {
	pagesize := unix.Getpagesize()
	size = (size + pagesize - 1) &^ (pagesize - 1)

	mem, err := unix.Mmap(-1, 0, pagesize+size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrap(err, "mmap stack region")
	}

	if err := unix.Mprotect(mem[:pagesize], unix.PROT_NONE); err != nil {
		_ = unix.Munmap(mem)
		return nil, errors.Wrap(err, "protect stack guard page")
	}

	return &Stack{mem: mem, size: size}, nil
}

// Size returns the usable size of the stack region in bytes, excluding the
// guard page.
func (s *Stack) Size() int {
	return s.size
}

// Free releases the stack region. Freeing a Stack that is still installed in
// a live context is a contract violation. Free is idempotent.
func (s *Stack) Free() error {
	if s.mem == nil {
		return nil
	}
	mem := s.mem
	s.mem = nil
	return errors.Wrap(unix.Munmap(mem), "unmap stack region")
}
