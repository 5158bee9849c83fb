package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of marker events into one signal
const DefaultDebounce = 200 * time.Millisecond

// MarkerWatcher signals when any installed-marker file appears or disappears
type MarkerWatcher struct {
	watcher  *fsnotify.Watcher
	markers  map[string]struct{}
	debounce time.Duration
	changes  chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewMarkerWatcher watches the parent directories of the given marker paths.
// Directories that do not exist yet are skipped.
func NewMarkerWatcher(markers []string, debounce time.Duration) (*MarkerWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	mw := &MarkerWatcher{
		watcher:  watcher,
		markers:  make(map[string]struct{}),
		debounce: debounce,
		changes:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	dirs := make(map[string]struct{})
	for _, m := range markers {
		if m == "" {
			continue
		}
		clean := filepath.Clean(m)
		mw.markers[clean] = struct{}{}
		dirs[filepath.Dir(clean)] = struct{}{}
	}

	for dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		// Non-fatal, the marker is still checked on demand
		_ = watcher.Add(dir)
	}

	go mw.processEvents()
	return mw, nil
}

// Changes delivers one value per debounced burst of marker events
func (mw *MarkerWatcher) Changes() <-chan struct{} {
	return mw.changes
}

// Watched returns the directories currently being watched
func (mw *MarkerWatcher) Watched() []string {
	return mw.watcher.WatchList()
}

// Close stops the watcher
func (mw *MarkerWatcher) Close() error {
	mw.cancel()
	return mw.watcher.Close()
}

func (mw *MarkerWatcher) processEvents() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-mw.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if _, tracked := mw.markers[filepath.Clean(event.Name)]; !tracked {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(mw.debounce)
				fire = timer.C
			}

		case <-fire:
			timer, fire = nil, nil
			select {
			case mw.changes <- struct{}{}:
			default:
			}

		case _, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
