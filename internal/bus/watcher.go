package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// retention is how long envelope files stay on disk before the janitor
// reclaims them. Long enough for every live watcher to have seen them.
const retention = 30 * time.Second

// janitorInterval is how often each watcher sweeps for stale envelopes.
const janitorInterval = 15 * time.Second

// Watcher delivers foreign envelopes from the bus directory, in arrival
// order. Own-instance envelopes and undecodable files are dropped silently.
type Watcher struct {
	bus     *Bus
	watcher *fsnotify.Watcher
	ch      chan Envelope
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// Watch starts watching the bus directory. Only envelopes published after the
// watch starts are delivered; a new instance catches up through the sync
// protocol instead of replaying stale files.
func (b *Bus) Watch(ctx context.Context) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(b.dir); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	w := &Watcher{
		bus:     b,
		watcher: fsw,
		ch:      make(chan Envelope, 64),
		cancel:  cancel,
		group:   g,
	}
	g.Go(func() error { return w.loop(ctx) })
	g.Go(func() error { return w.janitor(ctx) })
	return w, nil
}

// Events returns the delivery channel. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Envelope {
	return w.ch
}

// Close stops the watcher and waits for its goroutines.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	_ = w.group.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) error {
	defer close(w.ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// Publishes land via rename, which surfaces as Create. Writes to
			// .tmp files are filtered out by extension.
			if event.Op&fsnotify.Create == 0 || filepath.Ext(event.Name) != ".json" {
				continue
			}
			if env, ok := w.read(event.Name); ok {
				select {
				case w.ch <- env:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			busLog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// read decodes one envelope file. Malformed payloads and our own broadcasts
// are dropped, per protocol.
func (w *Watcher) read(path string) (Envelope, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		busLog.Debug("envelope_malformed", slog.String("file", filepath.Base(path)))
		return Envelope{}, false
	}
	if env.Instance == w.bus.instance || env.Channel == "" {
		return Envelope{}, false
	}
	return env, true
}

func (w *Watcher) janitor(ctx context.Context) error {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep removes envelope files past retention. Every watcher sweeps; removal
// races are benign.
func (w *Watcher) sweep() {
	entries, err := os.ReadDir(w.bus.dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-retention)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(w.bus.dir, entry.Name()))
		}
	}
}
