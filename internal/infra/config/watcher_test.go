package config

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netpress/internal/domain"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []domain.ConfigDiff
	last    domain.Config
}

func (r *changeRecorder) record(cfg domain.Config, diff domain.ConfigDiff) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, diff)
	r.last = cfg
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func startWatcher(t *testing.T, path string, initial domain.Config, rec *changeRecorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewWatcher(NewLoader(nil), path, initial, rec.record, nil).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give fsnotify a beat to install the directory watch.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "network:\n  currentSite: 1\n")
	initial, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	rec := &changeRecorder{}
	startWatcher(t, path, initial, rec)

	require.NoError(t, os.WriteFile(path, []byte("network:\n  currentSite: 2\n"), 0o644))
	require.Eventually(t, func() bool { return rec.count() > 0 }, 5*time.Second, 20*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, int64(2), rec.last.Network.CurrentSite)
	require.Contains(t, rec.changes[0].DynamicFields, "network.currentSite")
}

func TestWatcher_BadEditKeepsPreviousConfig(t *testing.T) {
	path := writeConfig(t, "network:\n  currentSite: 1\n")
	initial, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	rec := &changeRecorder{}
	startWatcher(t, path, initial, rec)

	require.NoError(t, os.WriteFile(path, []byte("network: [broken"), 0o644))
	time.Sleep(500 * time.Millisecond)
	require.Zero(t, rec.count())

	require.NoError(t, os.WriteFile(path, []byte("network:\n  currentSite: 4\n"), 0o644))
	require.Eventually(t, func() bool { return rec.count() > 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_NoCallbackOnNoopRewrite(t *testing.T) {
	content := "network:\n  currentSite: 1\n"
	path := writeConfig(t, content)
	initial, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	rec := &changeRecorder{}
	startWatcher(t, path, initial, rec)

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	time.Sleep(500 * time.Millisecond)
	require.Zero(t, rec.count())
}
