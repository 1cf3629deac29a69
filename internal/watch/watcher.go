// Package watch monitors .fga sources for changes and notifies a callback
// of the files that changed, debounced to coalesce editor save bursts into
// a single recompile.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches one .fga file, or every .fga file under a directory
// tree, and invokes onChange with the set of changed paths after a short
// debounce window.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	root      string
	onChange  func([]string) error
	onError   func(error)
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher rooted at a single .fga file or a
// directory containing .fga files.
func NewFileWatcher(root string, onChange func([]string) error, onError func(error)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(100 * time.Millisecond),
		root:      root,
		onChange:  onChange,
		onError:   onError,
		stopChan:  make(chan struct{}),
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil && fw.onError != nil {
			fw.onError(err)
		}
	})

	return fw, nil
}

// Start begins watching the file system.
func (fw *FileWatcher) Start() error {
	dirs, err := fw.findDirectories()
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}

	for _, dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	select {
	case <-fw.stopChan:
		return nil
	default:
		close(fw.stopChan)
	}

	fw.wg.Wait()
	fw.debouncer.Stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if fw.shouldIgnore(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if strings.HasSuffix(event.Name, ".fga") {
					fw.debouncer.Add(event.Name)
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}

		case <-fw.stopChan:
			return
		}
	}
}

// findDirectories returns root itself (if it's a directory) plus every
// subdirectory beneath it, or root's parent directory if root is a single
// file. fsnotify watches directories, not files, and isn't recursive, so
// every directory that could contain a .fga file needs its own Add call.
func (fw *FileWatcher) findDirectories() ([]string, error) {
	info, err := os.Stat(fw.root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{filepath.Dir(fw.root)}, nil
	}

	var dirs []string
	err = filepath.Walk(fw.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && !fw.shouldIgnore(path) {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dirs, nil
}

// shouldIgnore reports whether path should be excluded from watching or
// from triggering a recompile: hidden entries and anything under a
// "build" directory.
func (fw *FileWatcher) shouldIgnore(path string) bool {
	sep := string(filepath.Separator)
	if strings.HasPrefix(path, "build"+sep) || strings.Contains(path, sep+"build"+sep) {
		return true
	}

	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}

// Debouncer collects changed file paths and flushes them to a callback
// once no new change has arrived for its configured duration.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopChan chan struct{}
}

// NewDebouncer creates a debouncer that flushes duration after the last Add.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Add records a changed file and (re)starts the flush timer.
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.files) == 0 {
		return
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})

	if d.callback != nil {
		d.callback(files)
	}
}

// SetCallback sets the function invoked with the accumulated file list.
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels any pending flush.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
}
