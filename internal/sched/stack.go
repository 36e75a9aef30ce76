package sched

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/inhies/go-bytesize"
)

// ErrStackExhausted is returned when the pool has no budget left for another stack.
var ErrStackExhausted = errors.New("stack memory exhausted")

// ErrInvalidStackSize is returned for a stack size too small to hold the canary.
var ErrInvalidStackSize = errors.New("invalid stack size")

const (
	stackCanary     = 0x670c1a5b7d3a0c9e
	stackCanarySize = 8
)

// Stack is a fixed-size memory region owned by exactly one task.
// The lowest word holds a canary; a task writing past the bottom of its
// stack clobbers it and the next switch catches the overflow.
type Stack struct {
	buf []byte
}

// Bytes returns the usable region of the stack, excluding the canary.
func (s *Stack) Bytes() []byte { return s.buf[stackCanarySize:] }

// Size returns the total size of the stack including the canary.
func (s *Stack) Size() int { return len(s.buf) }

// Intact reports whether the canary is still in place.
func (s *Stack) Intact() bool {
	return binary.LittleEndian.Uint64(s.buf[:stackCanarySize]) == stackCanary
}

func (s *Stack) arm() {
	binary.LittleEndian.PutUint64(s.buf[:stackCanarySize], stackCanary)
}

// StackPool allocates fixed-size stacks from a bounded byte budget and
// recycles the stacks of terminated tasks.
type StackPool struct {
	size   int
	budget int
	inUse  int
	free   []*Stack
}

// NewStackPool creates a pool of stacks of the given size. A budget of zero or
// less means only a single stack fits.
func NewStackPool(size, budget bytesize.ByteSize) (*StackPool, error) {
	if size <= stackCanarySize {
		return nil, fmt.Errorf("stack size %s: %w", size, ErrInvalidStackSize)
	}
	if budget < size {
		budget = size
	}
	return &StackPool{size: int(size), budget: int(budget)}, nil
}

// Alloc hands out a stack, reusing a reclaimed one if available.
func (p *StackPool) Alloc() (*Stack, error) {
	if p.inUse+p.size > p.budget {
		return nil, fmt.Errorf("need %s, %s of %s in use: %w",
			bytesize.New(float64(p.size)), bytesize.New(float64(p.inUse)),
			bytesize.New(float64(p.budget)), ErrStackExhausted)
	}
	var s *Stack
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		s = &Stack{buf: make([]byte, p.size)}
	}
	s.arm()
	p.inUse += p.size
	return s, nil
}

// Release returns a stack to the pool. The stack must not be used afterwards.
func (p *StackPool) Release(s *Stack) {
	if s == nil {
		return
	}
	clear(s.buf)
	p.inUse -= p.size
	p.free = append(p.free, s)
}

// InUse returns the number of bytes held by live stacks.
func (p *StackPool) InUse() int { return p.inUse }

// StackSize returns the size of every stack handed out by the pool.
func (p *StackPool) StackSize() int { return p.size }

// Capacity returns how many stacks fit in the budget.
func (p *StackPool) Capacity() int { return p.budget / p.size }
