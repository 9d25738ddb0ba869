package build

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch rebuilds a source whenever it is written, until ctx is done.
// root is the host directory the builder's file system is rooted at and
// paths are relative to it. Each rebuild is a whole compilation of the
// changed unit; on receives its report.
func (b *Builder) Watch(ctx context.Context, root string, paths []string, on func(Report)) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// fsnotify recommends watching directories; editors replace files.
	tracked := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		name := path.Clean(filepath.ToSlash(p))
		host := filepath.Join(abs, filepath.FromSlash(name))
		tracked[host] = name
		dirs[filepath.Dir(host)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	b.log.Info("watching", "files", len(tracked), "dirs", len(dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, ok := tracked[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			b.log.Debug("changed", "file", name, "op", event.Op.String())
			on(b.BuildFile(name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watch", "error", err)
		}
	}
}
