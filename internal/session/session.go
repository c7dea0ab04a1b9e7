// Package session tracks the files a viewer host has open and loads them in
// the background for the host's event loop.
package session

import (
	"image/color"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taigrr/meshview/pkg/render"
	"github.com/taigrr/meshview/pkg/viewer"
	"github.com/taigrr/meshview/pkg/watcher"
)

// Level is the severity of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelOK
	LevelWarn
	LevelError
)

var levelColors = [...]color.RGBA{
	LevelInfo:  render.RGB(0x70, 0x70, 0xa0),
	LevelOK:    render.RGB(0x00, 0xe5, 0xa0),
	LevelWarn:  render.RGB(0xff, 0xd7, 0x00),
	LevelError: render.RGB(0xe9, 0x45, 0x60),
}

// Color returns the text color hosts draw a message of this level in.
func (l Level) Color() color.RGBA {
	if l < 0 || int(l) >= len(levelColors) {
		return levelColors[LevelInfo]
	}
	return levelColors[l]
}

// Status is the message hosts show next to the mesh statistics.
type Status struct {
	Text  string
	Level Level
}

// Result is a finished background load.
type Result struct {
	Path     string
	Loaded   *viewer.Loaded
	Err      error
	KeepView bool

	seq uint64
}

type request struct {
	path     string
	keepView bool
}

// Session is driven from the host's event goroutine, like the Viewer it
// wraps. Loads run elsewhere and come back through Results.
type Session struct {
	v       *viewer.Viewer
	logger  *log.Logger
	files   []string
	current int

	results chan Result
	reloads chan struct{}
	watcher *watcher.FileWatcher
	watched string

	// seq numbers loads; only the result of the latest one is installed.
	seq     uint64
	pending *request

	status   Status
	onChange func()
}

// New creates a session over v. Files are cycled with Next and Prev.
func New(v *viewer.Viewer, files []string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		v:       v,
		logger:  logger,
		files:   files,
		results: make(chan Result, 1),
		reloads: make(chan struct{}, 1),
	}
}

// OnChange sets a function called whenever the status changes.
func (s *Session) OnChange(fn func()) {
	s.onChange = fn
}

// Files returns the cycle list.
func (s *Session) Files() []string { return s.files }

// Status returns the current status message.
func (s *Session) Status() Status { return s.status }

// Results delivers finished background loads. Pass each to Finish.
func (s *Session) Results() <-chan Result { return s.results }

// Reloads fires when the watched file changed. Call Reload in response.
func (s *Session) Reloads() <-chan struct{} { return s.reloads }

// Open loads the first file synchronously. With no files it does nothing.
func (s *Session) Open() error {
	if len(s.files) == 0 {
		return nil
	}
	path := s.files[0]
	if err := s.v.Load(path); err != nil {
		return err
	}
	s.loaded(path, s.v.Scene().Empty())
	return nil
}

// Watch starts reloading the current file when it changes on disk.
func (s *Session) Watch(debounce time.Duration) error {
	fw, err := watcher.NewFileWatcher(debounce, s.logger)
	if err != nil {
		return err
	}
	s.watcher = fw
	s.watch(s.v.Path())
	fw.Start()
	return nil
}

// Close stops watching.
func (s *Session) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

// Next opens the following file in the list, wrapping around.
func (s *Session) Next() { s.cycle(1) }

// Prev opens the preceding file in the list, wrapping around.
func (s *Session) Prev() { s.cycle(-1) }

func (s *Session) cycle(delta int) {
	if len(s.files) < 2 {
		return
	}
	s.current = wrapIndex(s.current+delta, len(s.files))
	s.Load(s.files[s.current], false)
}

// Reload reads the current file again in the background, keeping the camera.
// While another load is in flight that load is restarted instead, since its
// file is the one that will be current.
func (s *Session) Reload() {
	if s.pending != nil {
		s.Load(s.pending.path, s.pending.keepView)
		return
	}
	p := s.v.Path()
	if p == "" {
		s.setStatus(viewer.ErrNothingLoaded.Error(), LevelWarn)
		return
	}
	s.Load(p, true)
}

// Load reads path on another goroutine. The result arrives on Results.
// Starting a load supersedes any load still in flight.
func (s *Session) Load(path string, keepView bool) {
	s.seq++
	seq := s.seq
	s.pending = &request{path: path, keepView: keepView}

	opts := s.v.LoadOptions()
	s.setStatus("loading "+filepath.Base(path)+"...", LevelInfo)
	go func() {
		l, err := viewer.LoadFile(path, opts)
		s.results <- Result{Path: path, Loaded: l, Err: err, KeepView: keepView, seq: seq}
	}()
}

// Finish installs a background load. A failed load keeps the current scene.
// Results of superseded loads are dropped.
func (s *Session) Finish(r Result) {
	if r.seq != s.seq {
		s.logger.Debug("dropping stale load", "path", r.Path)
		return
	}
	s.pending = nil

	if r.Err != nil {
		s.logger.Error("load failed", "path", r.Path, "err", r.Err)
		s.setStatus(r.Err.Error(), LevelError)
		return
	}

	if r.KeepView {
		s.v.Replace(r.Loaded)
	} else {
		s.v.Apply(r.Loaded)
	}
	s.watch(r.Path)
	s.loaded(r.Path, r.Loaded.Scene.Empty())
}

func (s *Session) loaded(path string, empty bool) {
	if empty {
		s.setStatus(filepath.Base(path)+": no drawable geometry", LevelWarn)
		return
	}
	s.setStatus("loaded "+filepath.Base(path), LevelOK)
}

func (s *Session) watch(path string) {
	if s.watcher == nil || path == "" || path == s.watched {
		return
	}
	if s.watched != "" {
		if err := s.watcher.Unwatch(s.watched); err != nil {
			s.logger.Warn("unwatch failed", "path", s.watched, "err", err)
		}
	}
	err := s.watcher.Watch(path, func(string) {
		select {
		case s.reloads <- struct{}{}:
		default:
		}
	})
	if err != nil {
		s.logger.Warn("watch failed", "path", path, "err", err)
		return
	}
	s.watched = path
}

func (s *Session) setStatus(text string, level Level) {
	s.status = Status{Text: text, Level: level}
	if s.onChange != nil {
		s.onChange()
	}
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
