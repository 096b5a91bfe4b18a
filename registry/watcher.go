package registry

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes the model directory and reports when a training run has
// overwritten the latest pointer. It only notifies; activating the new
// artifact stays an explicit reload.
type Watcher struct {
	fsw *fsnotify.Watcher
	log *zap.Logger

	// Updates receives the path of the latest pointer after each rewrite.
	Updates chan string

	done chan struct{}
}

// WatchLatest starts watching dir for rewrites of the latest pointer file.
func WatchLatest(dir string, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		log:     log,
		Updates: make(chan string, 4),
		done:    make(chan struct{}),
	}
	go w.run(filepath.Join(dir, LatestFile))
	return w, nil
}

func (w *Watcher) run(latestPath string) {
	defer close(w.Updates)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Save replaces the pointer via rename, which arrives as Create.
			if event.Name != latestPath {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			select {
			case w.Updates <- latestPath:
			default:
				// A pending notification already covers this update.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("model dir watch error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
