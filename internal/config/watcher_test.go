package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewWatcher(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	callback := func(*GatewayConfig) error { return nil }

	watcher, err := NewWatcher(path, callback)
	require.NoError(t, err)
	defer func() { _ = watcher.Stop() }()

	assert.Equal(t, path, watcher.path)
	assert.NotNil(t, watcher.callback)
	assert.Equal(t, DefaultDebounceDelay, watcher.debounceDelay)
	assert.Nil(t, watcher.LastConfig())
}

func TestNewWatcher_Options(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	watcher, err := NewWatcher(path, nil,
		WithDebounceDelay(10*time.Millisecond),
		WithErrorCallback(func(error) {}),
	)
	require.NoError(t, err)
	defer func() { _ = watcher.Stop() }()

	assert.Equal(t, 10*time.Millisecond, watcher.debounceDelay)
	assert.NotNil(t, watcher.errorCallback)
}

func TestWatcher_StartLoadsInitialConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	writeConfig(t, path, validConfigYAML)

	var calls atomic.Int32
	watcher, err := NewWatcher(path, func(*GatewayConfig) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start(context.Background()))
	defer func() { _ = watcher.Stop() }()

	require.NotNil(t, watcher.LastConfig())
	assert.Equal(t, "test-gateway", watcher.LastConfig().Metadata.Name)
	assert.Equal(t, int32(0), calls.Load())

	// A second Start is a no-op.
	assert.NoError(t, watcher.Start(context.Background()))
}

func TestWatcher_StartInvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	writeConfig(t, path, invalidConfigYAML)

	watcher, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer func() { _ = watcher.Stop() }()

	err = watcher.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.routes[0].path")
}

func TestWatcher_ForceReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	writeConfig(t, path, validConfigYAML)

	var received atomic.Pointer[GatewayConfig]
	watcher, err := NewWatcher(path, func(cfg *GatewayConfig) error {
		received.Store(cfg)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	defer func() { _ = watcher.Stop() }()

	writeConfig(t, path, strings.Replace(validConfigYAML, "test-gateway", "reloaded", 1))
	require.NoError(t, watcher.ForceReload())

	require.NotNil(t, received.Load())
	assert.Equal(t, "reloaded", received.Load().Metadata.Name)
	assert.Equal(t, "reloaded", watcher.LastConfig().Metadata.Name)
}

func TestWatcher_ReloadFailureKeepsPreviousConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		callback ConfigCallback
	}{
		{
			name:     "invalid route specification",
			content:  invalidConfigYAML,
			callback: func(*GatewayConfig) error { return nil },
		},
		{
			name:     "malformed yaml",
			content:  "spec: [",
			callback: func(*GatewayConfig) error { return nil },
		},
		{
			name:     "callback rejects",
			content:  strings.Replace(validConfigYAML, "test-gateway", "rejected", 1),
			callback: func(*GatewayConfig) error { return errors.New("rejected") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "avaroute.yaml")
			writeConfig(t, path, validConfigYAML)

			var reported atomic.Int32
			watcher, err := NewWatcher(path, tt.callback,
				WithErrorCallback(func(error) { reported.Add(1) }),
			)
			require.NoError(t, err)
			require.NoError(t, watcher.Start(context.Background()))
			defer func() { _ = watcher.Stop() }()

			writeConfig(t, path, tt.content)
			assert.Error(t, watcher.ForceReload())
			assert.Equal(t, int32(1), reported.Load())
			assert.Equal(t, "test-gateway", watcher.LastConfig().Metadata.Name)
		})
	}
}

func TestWatcher_ReloadsOnFileChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	writeConfig(t, path, validConfigYAML)

	var calls atomic.Int32
	watcher, err := NewWatcher(path, func(*GatewayConfig) error {
		calls.Add(1)
		return nil
	}, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	defer func() { _ = watcher.Stop() }()

	writeConfig(t, path, strings.Replace(validConfigYAML, "test-gateway", "changed", 1))

	assert.Eventually(t, func() bool {
		cfg := watcher.LastConfig()
		return cfg != nil && cfg.Metadata.Name == "changed"
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "avaroute.yaml")
	writeConfig(t, path, validConfigYAML)

	var calls atomic.Int32
	watcher, err := NewWatcher(path, func(*GatewayConfig) error {
		calls.Add(1)
		return nil
	}, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	defer func() { _ = watcher.Stop() }()

	writeConfig(t, filepath.Join(dir, "other.yaml"), "unrelated: true")
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avaroute.yaml")
	writeConfig(t, path, validConfigYAML)

	watcher, err := NewWatcher(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, watcher.Start(ctx))
	cancel()

	select {
	case <-watcher.stoppedCh:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
	assert.NoError(t, watcher.Stop())
}
