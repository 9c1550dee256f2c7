package datestore

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "housebot/pkg/logx"
)

const defaultLintDebounce = 500 * time.Millisecond

// Watcher reports malformed lines as soon as a store file is edited, instead
// of at the next reminder cycle. It only reads files.
type Watcher struct {
	log      logx.Logger
	files    map[string]*File
	debounce time.Duration
}

func NewWatcher(files []*File, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	m := make(map[string]*File, len(files))
	for _, f := range files {
		m[f.Path()] = f
	}
	return &Watcher{log: log, files: m, debounce: defaultLintDebounce}
}

// Lint checks f and logs one warning per line the next compaction would drop
// as invalid. An unreadable file is logged and returned as an error.
func (w *Watcher) Lint(f *File) ([]InvalidLine, error) {
	lines, err := f.ReadLines()
	if err != nil {
		w.log.Warn("date store unreadable", logx.String("file", f.Path()), logx.Err(err))
		return nil, err
	}
	var bad []InvalidLine
	for i, line := range lines {
		if _, err := ParsePendingDate(line); err != nil {
			bad = append(bad, InvalidLine{Line: i + 1, Text: line, Err: err})
			w.log.Warn("date store line will be dropped",
				logx.String("file", f.Path()),
				logx.Int("line", i+1),
				logx.String("text", line),
				logx.Err(err),
			)
		}
	}
	if len(bad) == 0 {
		w.log.Debug("date store ok", logx.String("file", f.Path()), logx.Int("lines", len(lines)))
	}
	return bad, nil
}

// Run lints every file once, then again after each debounced change, until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for _, f := range w.files {
		_, _ = w.Lint(f)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dirs := map[string]struct{}{}
	for path := range w.files {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	watched := 0
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			w.log.Warn("date store watch add failed", logx.String("dir", dir), logx.Err(err))
			continue
		}
		watched++
	}
	if watched == 0 && len(dirs) > 0 {
		return errors.New("no date store directory could be watched")
	}
	w.log.Debug("date store watcher started", logx.Int("dirs", watched), logx.Int("files", len(w.files)))

	due := make(chan string, len(w.files)+1)
	timers := map[string]*time.Timer{}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			path := filepath.Clean(ev.Name)
			if _, tracked := w.files[path]; !tracked {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if t := timers[path]; t != nil {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				select {
				case due <- path:
				default:
				}
			})
		case path := <-due:
			if f := w.files[path]; f != nil {
				_, _ = w.Lint(f)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			if err != nil {
				w.log.Warn("date store watch error", logx.Err(err))
			}
		}
	}
}
