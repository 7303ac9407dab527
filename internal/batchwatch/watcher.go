// Package batchwatch uploads spreadsheets dropped into a directory.
package batchwatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// DefaultDebounce is how long a file must be quiet before it is uploaded.
const DefaultDebounce = 100 * time.Millisecond

// Uploader sends one spreadsheet. *app.Controller implements it.
type Uploader interface {
	UploadBatch(ctx context.Context, filename string, r io.Reader, mode core.UploadMode) (*core.UploadResult, error)
}

// Result is the outcome of one file.
type Result struct {
	File   string
	Rows   int
	Upload *core.UploadResult
	Err    error
}

// Options configures a Watcher.
type Options struct {
	Dir      string
	Mode     core.UploadMode
	Uploader Uploader
	Logger   *slog.Logger
	Debounce time.Duration
	// Existing uploads the spreadsheets already in Dir on start.
	Existing bool
	OnResult func(Result)
}

// Watcher watches one directory.
type Watcher struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	done   map[string]time.Time
}

// New validates opts and creates a watcher.
func New(opts Options) (*Watcher, error) {
	if opts.Uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	if _, ok := core.ParseUploadMode(string(opts.Mode)); !ok {
		return nil, fmt.Errorf("invalid upload mode %q", opts.Mode)
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory %s is not a directory", opts.Dir)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		opts:   opts,
		logger: logger,
		timers: make(map[string]*time.Timer),
		done:   make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is cancelled. Files are uploaded one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.opts.Dir, err)
	}
	w.logger.Info("watching for spreadsheets", "dir", w.opts.Dir, "mode", w.opts.Mode)

	ready := make(chan string, 16)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case path := <-ready:
				w.process(egctx, path)
			}
		}
	})

	if w.opts.Existing {
		entries, err := os.ReadDir(w.opts.Dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() {
				w.schedule(egctx, filepath.Join(w.opts.Dir, e.Name()), ready)
			}
		}
	}

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				w.stopTimers()
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.schedule(egctx, event.Name, ready)

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				w.logger.Error("watcher error", "error", err)
			}
		}
	})

	return eg.Wait()
}

// schedule (re)starts the debounce timer of path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	if !Supported(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// process uploads path unless this version of it was already sent.
func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Removed before the debounce fired
		return
	}
	w.mu.Lock()
	last, seen := w.done[path]
	w.mu.Unlock()
	if seen && !info.ModTime().After(last) {
		return
	}

	res := Result{File: filepath.Base(path)}
	res.Rows, res.Err = Preflight(path)
	if res.Err == nil {
		res.Upload, res.Err = w.upload(ctx, path)
	}

	w.mu.Lock()
	w.done[path] = info.ModTime()
	w.mu.Unlock()

	if res.Err != nil {
		w.logger.Warn("batch upload failed", "file", res.File, "error", res.Err)
	} else {
		w.logger.Info("batch uploaded", "file", res.File, "rows", res.Rows)
	}
	if w.opts.OnResult != nil {
		w.opts.OnResult(res)
	}
}

func (w *Watcher) upload(ctx context.Context, path string) (*core.UploadResult, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the watched directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return w.opts.Uploader.UploadBatch(ctx, filepath.Base(path), f, w.opts.Mode)
}
