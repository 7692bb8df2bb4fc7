package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collector records callback batches for assertions.
type collector struct {
	mu      sync.Mutex
	batches [][]string
}

func (c *collector) onChange(_ context.Context, paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, paths)
}

func (c *collector) totalPaths() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestStartStop(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, 50*time.Millisecond, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	// Second start is a no-op.
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	// Second stop must not panic or hang.
	w.Stop()
}

func TestCallbackOnSourceChange(t *testing.T) {
	root := t.TempDir()
	c := &collector{}

	w, err := NewWatcher(root, nil, 50*time.Millisecond, c.onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	path := filepath.Join(root, "UserService.cs")
	require.NoError(t, os.WriteFile(path, []byte("public class UserService { }"), 0644))

	require.True(t, waitFor(t, 3*time.Second, func() bool { return c.totalPaths() > 0 }),
		"expected a callback after the debounce window")

	stats := w.Stats()
	assert.Equal(t, path, stats.LastEventPath)
	assert.GreaterOrEqual(t, stats.Batches, 1)
}

func TestIgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	c := &collector{}

	w, err := NewWatcher(root, nil, 50*time.Millisecond, c.onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0644))

	assert.False(t, waitFor(t, 500*time.Millisecond, func() bool { return c.totalPaths() > 0 }),
		"txt files must not trigger the callback")
	assert.Equal(t, 0, w.Stats().FilesCreated)
}

func TestRapidSavesDebounceToOneBatch(t *testing.T) {
	root := t.TempDir()
	c := &collector{}

	w, err := NewWatcher(root, nil, 200*time.Millisecond, c.onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	path := filepath.Join(root, "OrderService.cs")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("public class OrderService { }"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, waitFor(t, 3*time.Second, func() bool { return c.totalPaths() > 0 }))

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.batches, 1, "rapid saves of one file should settle into a single batch")
}

func TestContextCancelStopsLoop(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	w, err := NewWatcher(root, nil, 50*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))

	cancel()
	// The loop exits on its own; Stop must still return promptly.
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
