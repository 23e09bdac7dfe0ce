package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraitsura/segment_viewer/pkg/loader"
	"github.com/kraitsura/segment_viewer/pkg/model"
)

// ReloadFunc receives a freshly loaded result, or the error that prevented
// loading it. It is called from the watcher goroutine.
type ReloadFunc func(*model.MetricResult, error)

// ResultWatcher watches one result file and reloads it after changes settle.
//
// The parent directory is watched rather than the file itself because
// writers commonly replace the file by rename, which drops a file watch.
type ResultWatcher struct {
	path      string
	debouncer *Debouncer
	onReload  ReloadFunc

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
	done      chan struct{}
}

// NewResultWatcher creates a watcher for path. Call Start to begin.
func NewResultWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*ResultWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve result path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &ResultWatcher{
		path:      abs,
		debouncer: NewDebouncer(debounce),
		onReload:  onReload,
		fsw:       fsw,
		done:      make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *ResultWatcher) Path() string {
	return w.path
}

// Start processes events until ctx is cancelled or Close is called.
func (w *ResultWatcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *ResultWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.debouncer.Trigger(w.reload)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: result watcher: %v", err)
		}
	}
}

func (w *ResultWatcher) relevant(ev fsnotify.Event) bool {
	// Only one directory is watched, so the base name identifies the file.
	if filepath.Base(ev.Name) != filepath.Base(w.path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *ResultWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}
	result, err := loader.LoadResultFromFile(w.path)
	w.onReload(result, err)
}

// Close stops the watcher. It is safe to call more than once.
func (w *ResultWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Cancel()
		err = w.fsw.Close()
	})
	return err
}
