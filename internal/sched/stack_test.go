package sched

import (
	"testing"

	"github.com/inhies/go-bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPoolBudget(t *testing.T) {
	p, err := NewStackPool(512*bytesize.B, 2*bytesize.KB)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Capacity())

	var stacks []*Stack
	for i := 0; i < 4; i++ {
		s, err := p.Alloc()
		require.NoError(t, err)
		assert.Equal(t, 512, s.Size())
		assert.Len(t, s.Bytes(), 512-stackCanarySize)
		stacks = append(stacks, s)
	}
	assert.Equal(t, 2048, p.InUse())

	_, err = p.Alloc()
	assert.ErrorIs(t, err, ErrStackExhausted)

	p.Release(stacks[0])
	assert.Equal(t, 1536, p.InUse())
	s, err := p.Alloc()
	require.NoError(t, err)
	assert.Same(t, stacks[0], s)
}

func TestStackReleaseZeroesAndRearms(t *testing.T) {
	p, err := NewStackPool(64*bytesize.B, 64*bytesize.B)
	require.NoError(t, err)

	s, err := p.Alloc()
	require.NoError(t, err)
	copy(s.Bytes(), "leftover")
	p.Release(s)

	s, err = p.Alloc()
	require.NoError(t, err)
	assert.True(t, s.Intact())
	assert.Equal(t, make([]byte, len(s.Bytes())), s.Bytes())
}

func TestStackCanaryDetectsOverflow(t *testing.T) {
	p, err := NewStackPool(64*bytesize.B, 64*bytesize.B)
	require.NoError(t, err)
	s, err := p.Alloc()
	require.NoError(t, err)
	require.True(t, s.Intact())

	// writing below the usable region clobbers the canary
	s.buf[3] ^= 0xff
	assert.False(t, s.Intact())
}

func TestStackPoolRejectsTinyStacks(t *testing.T) {
	_, err := NewStackPool(8*bytesize.B, bytesize.KB)
	assert.ErrorIs(t, err, ErrInvalidStackSize)
}

func TestStackPoolBudgetBelowStackSize(t *testing.T) {
	p, err := NewStackPool(bytesize.KB, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Capacity())
}
