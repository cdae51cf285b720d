package spool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/handygrpc/handygrpc/agent/internal/config"
	"github.com/handygrpc/handygrpc/pkg/types"
)

type sent struct {
	name     string
	data     string
	priority types.Priority
}

type recorder struct {
	mu   sync.Mutex
	got  []sent
	fail map[string]bool
}

func (r *recorder) send(_ context.Context, name string, data []byte, p types.Priority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[name] {
		return errors.New("refused")
	}
	r.got = append(r.got, sent{name, string(data), p})
	return nil
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.got...)
}

// moveIn writes name via a temporary file and renames it into dir.
func moveIn(t *testing.T, dir, name, content string) {
	t.Helper()
	tmp := filepath.Join(dir, "."+name+".tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

func run(t *testing.T, w *Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	return cancel
}

func TestWatcher_ExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("first"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("skip"), 0o600))

	rec := &recorder{}
	w, err := New(config.SpoolConfig{Dir: dir, Priority: 3, QuickSuffix: ".quick", RemoveAfterSend: true}, rec.send)
	require.NoError(t, err)
	run(t, w)

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, 2*time.Second, 10*time.Millisecond)

	moveIn(t, dir, "b.bin", "second")
	moveIn(t, dir, "c.quick", "urgent")

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, []sent{
		{"a.bin", "first", 3},
		{"b.bin", "second", 3},
		{"c.quick", "urgent", types.MaxPriority},
	}, rec.all())

	require.Eventually(t, func() bool {
		_, errA := os.Stat(filepath.Join(dir, "a.bin"))
		_, errC := os.Stat(filepath.Join(dir, "c.quick"))
		return os.IsNotExist(errA) && os.IsNotExist(errC)
	}, 2*time.Second, 10*time.Millisecond)
	_, err = os.Stat(filepath.Join(dir, ".hidden"))
	require.NoError(t, err)
}

func TestWatcher_FailedSendKeepsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.bin"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.bin"), []byte("y"), 0o600))

	rec := &recorder{fail: map[string]bool{"bad.bin": true}}
	w, err := New(config.SpoolConfig{Dir: dir, RemoveAfterSend: true}, rec.send)
	require.NoError(t, err)
	run(t, w)

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "good.bin"))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
	_, err = os.Stat(filepath.Join(dir, "bad.bin"))
	require.NoError(t, err)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(config.SpoolConfig{}, nil)
	require.Error(t, err)
}

func TestRun_MissingDir(t *testing.T) {
	w, err := New(config.SpoolConfig{Dir: filepath.Join(t.TempDir(), "missing")}, (&recorder{}).send)
	require.NoError(t, err)
	require.Error(t, w.Run(context.Background()))
}
