package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/internal/logging"
)

// DirWatcher reports changes to the article files of a directory.
type DirWatcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
}

// NewDirWatcher starts watching dir. Bursts of events closer than debounce are reported once.
func NewDirWatcher(dir string, debounce time.Duration, logger *zap.Logger) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &DirWatcher{dir: dir, debounce: debounce, watcher: w, logger: logging.OrNop(logger)}, nil
}

// Run calls onChange after article files are created, written, removed or renamed,
// until ctx is done. The watcher is closed when Run returns.
func (d *DirWatcher) Run(ctx context.Context, onChange func()) {
	defer d.watcher.Close()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !isArticleFile(event.Name) ||
				event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			d.logger.Debug("Article file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()))

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(d.debounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})
			mu.Unlock()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("File watcher error", zap.String("dir", d.dir), zap.Error(err))
		}
	}
}

// isArticleFile matches the files FileStore reads.
func isArticleFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".json") && !strings.Contains(name, sampleDataMarker)
}
