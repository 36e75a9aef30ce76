package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inhies/go-bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinythreads.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
stack_size: 8KB
stack_budget: 1MB
delay_us: 0
segments: 6
layout: part2
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "part2", cfg.Layout)
	assert.Equal(t, 6, cfg.Segments)
	assert.Equal(t, uint32(0), cfg.DelayUS)
	assert.Equal(t, uint32(2000000), cfg.SplashUS)
	assert.Equal(t, "DT8025 - A3P3", cfg.Banner)

	sc, err := cfg.Sched()
	require.NoError(t, err)
	assert.Equal(t, 8*bytesize.KB, sc.StackSize)
	assert.Equal(t, bytesize.MB, sc.StackBudget)
}

func TestLoadClamps(t *testing.T) {
	cfg, err := Load(writeConfig(t, "segments: -1\nlayout: \"\"\nstack_size: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Segments)
	assert.Equal(t, "part1", cfg.Layout)
	assert.Equal(t, "4KB", cfg.StackSize)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "segments: [1, 2\n"))
	assert.Error(t, err)
}

func TestSchedRejectsBadSizes(t *testing.T) {
	cfg := Default()
	cfg.StackSize = "lots"
	_, err := cfg.Sched()
	assert.ErrorContains(t, err, "stack_size")

	cfg = Default()
	cfg.StackBudget = "12 parsecs"
	_, err = cfg.Sched()
	assert.ErrorContains(t, err, "stack_budget")
}
