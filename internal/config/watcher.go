package config

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/campuswall/campuswall-server/internal/logger"
)

// debounceDelay collapses editor write bursts into a single reload.
const debounceDelay = 250 * time.Millisecond

// Watcher monitors the .env file and applies log-level changes at
// runtime, so operators can flip a server to debug without a restart.
type Watcher struct {
	logger  *logger.Logger
	watcher *fsnotify.Watcher
	envFile string

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a watcher for the given .env file.
func NewWatcher(envFile string, log *logger.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the parent directory so atomic renames (write tmp, rename
	// over .env) are still observed.
	dir := filepath.Dir(envFile)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		logger:  log,
		watcher: fsWatcher,
		envFile: filepath.Clean(envFile),
		done:    make(chan struct{}),
	}, nil
}

// Start begins processing file events until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.processEvents(ctx)
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.envFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// scheduleReload debounces reloads so a burst of writes applies once.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	level, ok := readLogLevel(w.envFile)
	if !ok {
		return
	}

	w.logger.SetLevel(logger.ParseLevel(level))
	w.logger.Info("log level updated", "level", strings.ToLower(level))
}

// readLogLevel extracts LOG_LEVEL from the env file without touching
// the process environment.
func readLogLevel(path string) (string, bool) {
	f, err := os.Open(path) //#nosec G304 -- path comes from the operator's own flag
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) != "LOG_LEVEL" {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`), true
	}
	return "", false
}
