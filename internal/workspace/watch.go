package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/opal-lang/suitec/pkgs/errors"
)

// Change reports one regeneration triggered by Watch. Err holds the compile
// or write failure; watching continues after it.
type Change struct {
	Input   string
	Written []string
	Err     error
}

// Watch regenerates selected suite files as they are written or created,
// calling onChange after each one, until ctx is cancelled. New directories
// are watched as they appear. ready, when non-nil, is closed once the
// initial watches are in place.
func (w *Workspace) Watch(ctx context.Context, ready chan<- struct{}, onChange func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInputError(w.config.Dir, err)
	}
	defer watcher.Close()

	if err := w.watchTree(watcher, w.config.Dir); err != nil {
		return errors.NewInputError(w.config.Dir, err)
	}
	w.logger.Info("watching", "dir", w.config.Dir)
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, watcher, event, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.NewInputError(w.config.Dir, err)
		}
	}
}

func (w *Workspace) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, onChange func(Change)) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(watcher, event.Name); err != nil {
				w.logger.Warn("cannot watch directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.config.Dir, event.Name)
	if err != nil || !w.Selects(rel) {
		return
	}
	w.logger.Debug("suite changed", "input", rel, "op", event.Op.String())

	change := Change{Input: rel}
	results, err := w.Compile(ctx, []string{rel})
	if err == nil {
		change.Written, err = w.Write(results)
	}
	change.Err = err
	onChange(change)
}

// watchTree adds dir and its subdirectories, honouring SkipDirs and exclude
func (w *Workspace) watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.config.Dir {
			rel, err := filepath.Rel(w.config.Dir, path)
			if err != nil {
				return err
			}
			if skipDir(d.Name(), filepath.ToSlash(rel), w.config.Exclude) {
				return filepath.SkipDir
			}
		}
		return watcher.Add(path)
	})
}
