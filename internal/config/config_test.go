package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.Runtime.FrameRate)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sandbox.yaml", `
logging:
  level: debug
runtime:
  frame_rate: 60
systems:
  regen:
    active: false
  movement: {}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding, "unset fields keep defaults")
	assert.Equal(t, 60, cfg.Runtime.FrameRate)
	assert.Equal(t, 256, cfg.Runtime.SchedulerCapacity)

	active, ok := cfg.SystemActive("regen")
	assert.True(t, ok)
	assert.False(t, active)

	_, ok = cfg.SystemActive("movement")
	assert.False(t, ok, "nil active means no override")
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sandbox.toml", `
[logging]
encoding = "json"

[runtime]
frame_rate = 20
observe = true

[systems.regen]
active = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, 20, cfg.Runtime.FrameRate)
	assert.True(t, cfg.Runtime.Observe)
	active, ok := cfg.SystemActive("regen")
	assert.True(t, ok)
	assert.True(t, active)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "rate.yaml", "runtime:\n  frame_rate: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidFrameRate)

	_, err = Load(writeFile(t, dir, "cap.toml", "[runtime]\nscheduler_capacity = -1\n"))
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = Load(writeFile(t, dir, "enc.yaml", "logging:\n  encoding: xml\n"))
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchReloadsValidChanges(t *testing.T) {
	path := writeFile(t, t.TempDir(), "live.yaml", "runtime:\n  frame_rate: 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []int
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(cfg *Config) {
			mu.Lock()
			seen = append(seen, cfg.Runtime.FrameRate)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("runtime:\n  frame_rate: 0\n"), 0o644))
	time.Sleep(3 * reloadDebounce)
	require.NoError(t, os.WriteFile(path, []byte("runtime:\n  frame_rate: 45\n"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == 45
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.NotContains(t, seen, 0, "invalid reloads are skipped")
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
