// Package walker enumerates regular files under a directory tree.
// It uses fastwalk for parallel traversal and never follows symbolic
// links: links are neither traversed nor reported.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// WalkError pairs a path with the error encountered there.
// Walk errors are collected, not fatal: an unreadable subtree reduces
// the result set but never aborts the enumeration.
type WalkError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result contains the files found under a root plus any per-path errors.
type Result struct {
	// Files are the regular files found, with their sizes at stat time.
	Files []types.FileRecord

	// Errors are per-path failures encountered and skipped.
	Errors []WalkError
}

// TotalBytes returns the combined size of all enumerated files.
func (r *Result) TotalBytes() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// Walk enumerates every regular file at or below root.
//
// Ordering is whatever the traversal yields; it is not guaranteed
// stable across runs. Files that vanish between directory listing and
// stat are skipped. Cancelling ctx stops the traversal early: Walk
// returns a nil error with the files collected so far, and the
// cancellation itself is not recorded as a walk error.
func Walk(ctx context.Context, root string, exclude []string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absRoot)
	}

	w := &walkState{exclude: exclude}

	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() { close(done) })
	defer stop()

	walkErr := fastwalk.Walk(&conf, absRoot, w.callback(done))
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		return nil, walkErr
	}

	return &Result{Files: w.files, Errors: w.errors}, nil
}

// walkState accumulates results across fastwalk's concurrent callbacks.
type walkState struct {
	exclude []string

	mu     sync.Mutex
	files  []types.FileRecord
	errors []WalkError
}

// callback returns the fastwalk callback. It runs on multiple
// goroutines, so all result mutation goes through the mutex.
func (w *walkState) callback(done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		if err != nil {
			w.addError(path, err)
			return nil
		}

		if w.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		// Symlinks and other non-regular entries are skipped entirely.
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// File vanished between listing and stat.
			if os.IsNotExist(err) {
				return nil
			}
			w.addError(path, err)
			return nil
		}

		w.mu.Lock()
		w.files = append(w.files, types.FileRecord{Path: path, Size: info.Size()})
		w.mu.Unlock()

		return nil
	}
}

func (w *walkState) addError(path string, err error) {
	w.mu.Lock()
	w.errors = append(w.errors, WalkError{Path: path, Error: err.Error()})
	w.mu.Unlock()
}

// isExcluded checks if a path matches any exclusion pattern.
func (w *walkState) isExcluded(path string) bool {
	for _, pattern := range w.exclude {
		if pattern == "" {
			continue
		}
		if path == pattern {
			return true
		}
		if len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator) {
			return true
		}
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}
