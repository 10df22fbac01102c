package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/geowfs/wfs-gateway/internal/models"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a catalog file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context, layers []models.Layer) error
	logger   *zap.SugaredLogger
}

func NewWatcher(path string, onChange func(ctx context.Context, layers []models.Layer) error) *Watcher {
	return &Watcher{
		path:     path,
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   zap.S().Named("catalog_watcher"),
	}
}

func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run watches until ctx is done. The parent directory is watched rather
// than the file itself: editors replace the file with a rename, which
// drops the inode a file watch is bound to.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				w.logger.Debug("fsnotify watcher channel is closed")
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				w.logger.Debugw("ignoring event", "event", event.String())
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorw("watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	layers, err := Load(w.path)
	if err != nil {
		// keep the previous catalog
		w.logger.Warnw("catalog file rejected", "path", w.path, "error", err)
		return
	}
	if err := w.onChange(ctx, layers); err != nil {
		w.logger.Errorw("failed to apply catalog file", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("catalog file reloaded", "path", w.path, "layers", len(layers))
}
