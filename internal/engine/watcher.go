package engine

import (
	"path/filepath"
	"sync"

	"SceneGL/internal/logger"
	"SceneGL/internal/material"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reload is a material library parsed again after its file changed.
type Reload struct {
	Path    string
	Library *material.Library
}

// LibraryWatcher re-parses material libraries when they change on disk.
// Parsing happens on the watcher goroutine; results are collected with
// Drain from the render thread.
type LibraryWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool // Cleaned paths of watched libraries
	reloads chan Reload
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewLibraryWatcher watches the directories holding paths. Editors often
// replace a file rather than write it in place, so directories are watched
// and events filtered by name.
func NewLibraryWatcher(paths []string) (*LibraryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	lw := &LibraryWatcher{
		watcher: w,
		files:   make(map[string]bool),
		reloads: make(chan Reload, 16),
		done:    make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		clean := filepath.Clean(p)
		lw.files[clean] = true
		dir := filepath.Dir(clean)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	lw.wg.Add(1)
	go lw.run()
	logger.Log.Info("Watching material libraries", zap.Strings("paths", paths))
	return lw, nil
}

func (lw *LibraryWatcher) run() {
	defer lw.wg.Done()
	for {
		select {
		case <-lw.done:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !lw.files[path] {
				continue
			}
			lw.reload(path)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (lw *LibraryWatcher) reload(path string) {
	lib, err := material.Load(path)
	if err != nil {
		// a half written file fails to parse; the next write event retries
		logger.Log.Warn("Material library reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	if len(lib.Order) == 0 {
		// truncated before being rewritten
		logger.Log.Debug("Empty material library ignored", zap.String("path", path))
		return
	}
	select {
	case lw.reloads <- Reload{Path: path, Library: lib}:
	case <-lw.done:
	}
}

// Reloads delivers every successful reload.
func (lw *LibraryWatcher) Reloads() <-chan Reload {
	return lw.reloads
}

// Drain returns the pending reloads without blocking, keeping only the
// newest per path.
func (lw *LibraryWatcher) Drain() []Reload {
	var out []Reload
	index := make(map[string]int)
	for {
		select {
		case r := <-lw.reloads:
			if i, ok := index[r.Path]; ok {
				out[i] = r
				continue
			}
			index[r.Path] = len(out)
			out = append(out, r)
		default:
			return out
		}
	}
}

// Close stops watching and waits for the watcher goroutine to exit.
func (lw *LibraryWatcher) Close() error {
	close(lw.done)
	err := lw.watcher.Close()
	lw.wg.Wait()
	return err
}
