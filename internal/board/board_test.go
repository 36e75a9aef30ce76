package board

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDisplay(t *testing.T) {
	m := NewMemory(4)
	require.NoError(t, m.Print(0, 1))
	require.NoError(t, m.Print(3, 9))
	require.NoError(t, m.Print(0, 4))
	require.NoError(t, m.Puts("hello"))
	require.NoError(t, m.Clear())

	assert.Equal(t, []int{1, 4}, m.Values(0))
	assert.Equal(t, []int{9}, m.Values(3))
	assert.Equal(t, []string{"hello"}, m.Banners)
	assert.Equal(t, 1, m.Clears)
}

func TestInvalidSegment(t *testing.T) {
	for _, d := range []Display{NewMemory(4), NewConsoleWriter(&bytes.Buffer{}, 4)} {
		assert.ErrorIs(t, d.Print(4, 1), ErrInvalidSegment)
		assert.ErrorIs(t, d.Print(-1, 1), ErrInvalidSegment)
		assert.NoError(t, d.Print(3, 1))
	}
}

func TestConsoleRendersSegments(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, 2)

	require.NoError(t, c.Print(1, 42))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\r\x1b[2K"))
	assert.Contains(t, out, "        |      42")

	buf.Reset()
	require.NoError(t, c.Print(0, 1234567890))
	assert.Contains(t, buf.String(), "34567890|")

	buf.Reset()
	require.NoError(t, c.Clear())
	assert.NotContains(t, buf.String(), "42")
}

func TestGPIOToggle(t *testing.T) {
	var trace bytes.Buffer
	g := NewGPIO(17, &trace)
	g.Init()
	assert.False(t, g.On())

	g.Toggle()
	assert.True(t, g.On())
	g.Toggle()
	assert.False(t, g.On())
	assert.Equal(t, uint64(2), g.Toggles())
	assert.Equal(t, "gpio17=1\ngpio17=0\n", trace.String())
}

func TestTimerBusyWaits(t *testing.T) {
	tm := NewTimer()
	start := time.Now()
	tm.WaitMicroseconds(2000)

	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
	assert.Positive(t, tm.Spins())
	assert.Equal(t, int64(1), tm.Waits())

	tm.WaitMicroseconds(0)
	assert.Equal(t, int64(2), tm.Waits())
}
