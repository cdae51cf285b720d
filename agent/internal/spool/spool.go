package spool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/handygrpc/handygrpc/agent/internal/config"
	"github.com/handygrpc/handygrpc/pkg/types"
)

// SendFunc delivers one file's contents at priority p.
type SendFunc func(ctx context.Context, name string, data []byte, p types.Priority) error

// Watcher feeds files from a spool directory to a SendFunc.
type Watcher struct {
	cfg  config.SpoolConfig
	send SendFunc
}

// New returns a Watcher for cfg.Dir.
func New(cfg config.SpoolConfig, send SendFunc) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("spool: dir is required")
	}
	return &Watcher{cfg: cfg, send: send}, nil
}

// Run processes files already present, then every file that appears, until
// ctx is cancelled. A file that fails to send is left in place and logged.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("spool: new watcher: %w", err)
	}
	defer watcher.Close()

	// Watch before scanning so nothing created in between is missed.
	if err := watcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("spool: watch %q: %w", w.cfg.Dir, err)
	}

	if err := w.scan(ctx); err != nil {
		return err
	}
	slog.Info("spool: watching", "dir", w.cfg.Dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Rename into the directory arrives as Create.
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.process(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("spool: watcher error", "err", err)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("spool: read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w.process(ctx, filepath.Join(w.cfg.Dir, name))
	}
	if len(names) > 0 {
		slog.Info("spool: processed existing files", "count", len(names))
	}
	return nil
}

// process sends one file. Errors are logged; the file stays for a rerun.
func (w *Watcher) process(ctx context.Context, path string) {
	base := filepath.Base(path)
	if ignored(base) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("spool: read failed", "file", path, "err", err)
		return
	}

	p := types.Priority(w.cfg.Priority)
	if w.cfg.IsQuick(base) {
		p = types.MaxPriority
	}
	if err := w.send(ctx, base, data, p); err != nil {
		slog.Warn("spool: send failed, file kept", "file", path, "err", err)
		return
	}
	slog.Debug("spool: sent", "file", path, "bytes", len(data), "priority", p)

	if w.cfg.RemoveAfterSend {
		if err := os.Remove(path); err != nil {
			slog.Warn("spool: remove failed", "file", path, "err", err)
		}
	}
}

func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp")
}
