// Package watch re-runs a callback when Decaf sources under a path change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/funvibe/decaf/internal/config"
)

// Watch blocks until ctx is done, calling onChange with the sorted set of
// source files touched during each quiet period of length debounce. When
// target is a file, only that file is reported.
func Watch(ctx context.Context, target string, debounce time.Duration, onChange func(changed []string)) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	absTarget = filepath.Clean(absTarget)
	info, err := os.Stat(absTarget)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root, single := absTarget, ""
	if !info.IsDir() {
		root, single = filepath.Dir(absTarget), absTarget
	}
	if single != "" {
		err = watcher.Add(root)
	} else {
		err = addRecursive(watcher, root)
	}
	if err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = config.DefaultDebounce
	}
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 && single == "" {
				if fi, statErr := os.Stat(path); statErr == nil && fi.IsDir() {
					_ = addRecursive(watcher, path)
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if single != "" && path != single {
				continue
			}
			if !IsSource(path) {
				continue
			}
			if len(pending) > 0 && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			onChange(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

// IsSource reports whether path has a Decaf source extension.
func IsSource(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Sources lists the Decaf files under target, or target itself if it is a file.
func Sources(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	var files []string
	err = filepath.WalkDir(target, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if path != target && skipDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && skipDir(entry.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor"
}
