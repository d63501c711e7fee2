package stepconstraint

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.viam.com/pushrecovery/logging"
	"go.viam.com/pushrecovery/utils"
)

// reloadDelay coalesces the bursts of events a single save produces.
const reloadDelay = 50 * time.Millisecond

type regionSnapshot struct {
	byDepth  map[int][]*Region
	fallback []*Region
}

func (s *regionSnapshot) regions(depth int) []*Region {
	if list, ok := s.byDepth[depth]; ok {
		return list
	}
	return s.fallback
}

// FileProvider serves regions read from a JSON file (see FileConfig) and reloads them whenever
// the file is rewritten. Lookups never block on a reload. A file that fails to parse or validate
// leaves the previous regions in place.
type FileProvider struct {
	path    string
	logger  logging.Logger
	watcher *fsnotify.Watcher
	workers utils.StoppableWorkers
	reload  func(f func())

	// closeMu orders debounced reloads with Close.
	closeMu sync.Mutex
	closed  bool

	current *atomic.Pointer[regionSnapshot]
	reloads *atomic.Int64
}

// NewFileProvider reads the regions at path and starts watching it for changes.
func NewFileProvider(path string, logger logging.Logger) (*FileProvider, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fp := &FileProvider{
		path:    absPath,
		logger:  logger,
		current: atomic.NewPointer[regionSnapshot](nil),
		reloads: atomic.NewInt64(0),
		reload:  debounce.New(reloadDelay),
	}
	if err := fp.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	// editors often replace the file, so the directory is watched rather than the file
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", absPath), watcher.Close())
	}
	fp.watcher = watcher
	fp.workers = utils.NewStoppableWorkers(fp.watch)
	return fp, nil
}

func (fp *FileProvider) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fp.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fp.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fp.reload(func() {
				fp.closeMu.Lock()
				defer fp.closeMu.Unlock()
				if fp.closed {
					return
				}
				if err := fp.Reload(); err != nil {
					fp.logger.Warnw("keeping previous step constraints", "path", fp.path, "error", err)
				}
			})
		case err, ok := <-fp.watcher.Errors:
			if !ok {
				return
			}
			fp.logger.Errorw("step constraint watcher error", "path", fp.path, "error", err)
		}
	}
}

// Reload reads the file now. On failure the previous regions are kept.
func (fp *FileProvider) Reload() error {
	cfg, err := ReadFileConfig(fp.path)
	if err != nil {
		return err
	}
	byDepth, fallback := cfg.Regions()
	fp.current.Store(&regionSnapshot{byDepth: byDepth, fallback: fallback})
	count := fp.reloads.Inc()
	fp.logger.Debugw("loaded step constraints", "path", fp.path, "depths", len(byDepth), "reloads", count)
	return nil
}

// Reloads returns how many times the file was loaded successfully.
func (fp *FileProvider) Reloads() int64 {
	return fp.reloads.Load()
}

// Regions returns the regions for depth from the latest successfully loaded file.
func (fp *FileProvider) Regions(depth int) []*Region {
	snapshot := fp.current.Load()
	if snapshot == nil {
		return nil
	}
	return snapshot.regions(depth)
}

// Provider returns fp as a Provider.
func (fp *FileProvider) Provider() Provider {
	return fp.Regions
}

// Close stops watching the file.
func (fp *FileProvider) Close() error {
	fp.closeMu.Lock()
	fp.closed = true
	fp.closeMu.Unlock()
	fp.workers.Stop()
	return fp.watcher.Close()
}
