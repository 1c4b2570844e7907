package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/labnote/internal/parser"
	"github.com/starford/labnote/internal/storage"
)

// Change operations reported by Watch.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// reconcileDelay debounces full reconciliation after renames and directory
// removals.
const reconcileDelay = 200 * time.Millisecond

// Change describes one index mutation driven by the file system.
type Change struct {
	Op       string
	Path     string
	Notebook bool // true when Path is a notebook manifest
}

// ChangeFunc is called after each watcher-driven index mutation.
type ChangeFunc func(Change)

type vaultWatcher struct {
	db     LabIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	notify ChangeFunc
}

// Watch starts an fsnotify watcher on the vault root and applies file
// changes to the index until ctx is cancelled. notify (if non-nil) is called
// after each successful mutation.
//
// New directories are added to the watch list and indexed. Renames and
// directory removals trigger a debounced reconciliation against the vault.
func Watch(ctx context.Context, db LabIndex, store storage.Provider, vaultRoot string, logger *slog.Logger, notify ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, vaultRoot); err != nil {
		return err
	}

	vw := &vaultWatcher{db: db, store: store, root: vaultRoot, logger: logger, notify: notify}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	reconcile := time.NewTimer(reconcileDelay)
	if !reconcile.Stop() {
		<-reconcile.C
	}
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			vw.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if vw.handle(fw, ev) {
				reconcile.Reset(reconcileDelay)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies a single fsnotify event. It reports whether a
// reconciliation pass should be scheduled.
func (vw *vaultWatcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addDirsRecursive(fw, ev.Name); err != nil {
				vw.logger.Warn("watcher: add new dir failed",
					slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			vw.indexDir(ev.Name)
			return false
		}
	}

	rel, err := filepath.Rel(vw.root, ev.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isHidden(rel) {
		return false
	}
	tracked := parser.IsEntryPath(rel) || parser.IsManifestPath(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if !tracked {
			return false
		}
		op := OpUpdated
		if ev.Op&fsnotify.Create != 0 {
			op = OpCreated
		}
		vw.apply(rel, op)
		return false

	case ev.Op&fsnotify.Remove != 0:
		if !tracked {
			// a removed directory takes its files with it
			return true
		}
		vw.remove(rel)
		return false

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports only the old name; the new one arrives as Create.
		if tracked {
			vw.remove(rel)
		}
		return true
	}
	return false
}

func (vw *vaultWatcher) apply(rel, op string) {
	data, err := vw.store.Read(rel)
	if err != nil {
		vw.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(vw.db, rel, data, vw.modTime(rel)); err != nil {
		vw.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	vw.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", op))
	vw.emit(op, rel)
}

func (vw *vaultWatcher) remove(rel string) {
	if err := vw.db.DeletePath(rel); err != nil {
		vw.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	vw.logger.Debug("watcher: deleted", slog.String("path", rel))
	vw.emit(OpDeleted, rel)
}

// reconcile removes index rows whose files are gone and indexes files whose
// checksum differs from the index.
func (vw *vaultWatcher) reconcile() {
	checksums, err := vw.db.AllChecksums()
	if err != nil {
		vw.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := vw.store.List("")
	if err != nil {
		vw.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			vw.remove(p)
		}
	}
	for p, cs := range disk {
		old, indexed := checksums[p]
		if old == cs {
			continue
		}
		op := OpUpdated
		if !indexed {
			op = OpCreated
		}
		vw.apply(p, op)
	}
}

// indexDir indexes the tracked files found under a newly created directory.
func (vw *vaultWatcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(vw.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if parser.IsEntryPath(rel) || parser.IsManifestPath(rel) {
			vw.apply(rel, OpCreated)
		}
		return nil
	})
}

func (vw *vaultWatcher) modTime(rel string) time.Time {
	info, err := os.Stat(filepath.Join(vw.root, filepath.FromSlash(rel)))
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}

func (vw *vaultWatcher) emit(op, rel string) {
	if vw.notify != nil {
		vw.notify(Change{Op: op, Path: rel, Notebook: parser.IsManifestPath(rel)})
	}
}

func isHidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
