// Package tui hosts the viewer in a terminal, drawing with half-block
// characters and taking mouse and keyboard input.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/meshview/internal/session"
	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/render"
	"github.com/taigrr/meshview/pkg/viewer"
)

// DefaultFPS is the inertia animation rate.
const DefaultFPS = 60

// keyStep is the drag distance in pixels simulated by one arrow key press.
const keyStep = 10

const keyHints = "r reset  R reload  n/p next/prev  +/- zoom  q quit"

// Options configures Run.
type Options struct {
	Logger   *log.Logger
	Files    []string // Files to cycle through with n/p; the first is opened
	Inertia  bool
	FPS      int
	Watch    bool          // Reload the current file when it changes on disk
	Debounce time.Duration // Watcher quiet period
}

type host struct {
	term    *uv.Terminal
	v       *viewer.Viewer
	s       *session.Session
	fb      *render.Framebuffer
	base    render.Options
	inertia *Inertia
	dirty   bool
}

func newHost(v *viewer.Viewer, opts Options) *host {
	h := &host{
		v:    v,
		s:    session.New(v, opts.Files, opts.Logger),
		fb:   render.NewFramebuffer(0, 0),
		base: v.RenderOptions(),
	}
	if opts.Inertia {
		h.inertia = NewInertia(opts.FPS)
	}
	v.SetRedraw(func() { h.dirty = true })
	h.s.OnChange(func() { h.dirty = true })
	return h
}

// Run opens the first file, takes over the terminal and processes input
// until ctx is cancelled or the user quits. A failure to open the first
// file is returned before the terminal is touched.
func Run(ctx context.Context, v *viewer.Viewer, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}

	h := newHost(v, opts)
	if err := h.s.Open(); err != nil {
		return err
	}
	if opts.Watch {
		if err := h.s.Watch(opts.Debounce); err != nil {
			return err
		}
		defer h.s.Close()
	}

	return h.run(ctx, opts.FPS)
}

func (h *host) run(ctx context.Context, fps int) error {
	h.term = uv.DefaultTerminal()

	width, height, err := h.term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := h.term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	h.term.EnterAltScreen()
	h.term.HideCursor()
	h.term.Resize(width, height)

	// Button-event mouse tracking reports motion only while a button is held
	fmt.Fprint(os.Stdout, "\x1b[?1002h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1002l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		h.term.ExitAltScreen()
		h.term.ShowCursor()
		h.term.Shutdown(context.Background())
	}()

	h.resize(width, height)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := h.term.Events()
	for {
		if h.dirty {
			if err := h.draw(); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if h.handle(ev) {
				return nil
			}

		case res := <-h.s.Results():
			h.s.Finish(res)

		case <-h.s.Reloads():
			h.s.Reload()

		case <-ticker.C:
			if h.inertia != nil && h.inertia.Active() {
				h.v.Rotate(h.inertia.Step())
			}
		}
	}
}

// handle applies one terminal event. It returns true to quit.
func (h *host) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		h.term.Erase()
		h.term.Resize(ev.Width, ev.Height)
		h.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		return h.key(ev)

	case uv.MouseClickEvent:
		if h.inertia != nil {
			h.inertia.Stop()
		}
		x, y := cellToPixel(ev.X, ev.Y)
		h.v.Press(pointerButton(ev.Button), x, y)

	case uv.MouseMotionEvent:
		x, y := cellToPixel(ev.X, ev.Y)
		if h.inertia == nil || h.v.Mode() != viewer.Rotating {
			h.v.Drag(x, y)
			return false
		}
		before := h.v.Camera()
		h.v.Drag(x, y)
		after := h.v.Camera()
		// Track in pixels, the unit Viewer.Rotate expects
		speed := h.v.RotateSpeed()
		h.inertia.Track((after.RotY-before.RotY)/speed, (after.RotX-before.RotX)/speed)

	case uv.MouseReleaseEvent:
		if h.inertia != nil && h.v.Mode() == viewer.Rotating {
			h.inertia.Release()
		}
		h.v.Release()

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			h.v.Scroll(1)
		case uv.MouseWheelDown:
			h.v.Scroll(-1)
		}
	}
	return false
}

func (h *host) key(ev uv.KeyPressEvent) bool {
	switch {
	case ev.MatchString("q", "escape", "ctrl+c"):
		return true
	case ev.MatchString("r"):
		if h.inertia != nil {
			h.inertia.Stop()
		}
		h.v.ResetView()
	case ev.MatchString("R", "ctrl+r"):
		h.s.Reload()
	case ev.MatchString("n", "tab"):
		h.s.Next()
	case ev.MatchString("p", "shift+tab"):
		h.s.Prev()
	case ev.Text == "+" || ev.MatchString("="):
		h.v.Scroll(1)
	case ev.MatchString("-", "_"):
		h.v.Scroll(-1)
	case ev.MatchString("left", "a"):
		h.v.Rotate(-keyStep, 0)
	case ev.MatchString("right", "d"):
		h.v.Rotate(keyStep, 0)
	case ev.MatchString("up", "w"):
		h.v.Rotate(0, -keyStep)
	case ev.MatchString("down", "s"):
		h.v.Rotate(0, keyStep)
	}
	return false
}

// resize fits the framebuffer and lens to a terminal of cols x rows cells.
func (h *host) resize(cols, rows int) {
	h.fb.Resize(cols, rows*2)
	vp := h.fb.Viewport()

	h.v.SetRenderOptions(terminalOptions(h.base, vp))
	h.v.Resize(vp.Width, vp.Height)
}

// terminalOptions scales the lens and grid to a half-block viewport and
// hides the pixel overlay, which the status rows replace.
func terminalOptions(base render.Options, vp render.Viewport) render.Options {
	opts := base
	opts.Lens = base.Lens.ScaledTo(vp)
	spacing := base.GridSpacing
	if spacing <= 0 {
		spacing = render.DefaultGridSpacing
	}
	vp = vp.OrDefault()
	edge := min(vp.Width, vp.Height)
	opts.GridSpacing = max(4, spacing*edge/render.ReferenceSize)
	opts.HideOverlay = true
	return opts
}

func (h *host) draw() error {
	h.dirty = false
	frame := h.v.Frame()
	h.fb.Paint(frame)

	h.term.Draw(uv.DrawableFunc(func(scr uv.Screen, area uv.Rectangle) {
		h.fb.Draw(scr, area)
		h.fb.DrawLabels(scr, area, frame.Labels)
		h.drawStatus(scr, area)
	}))
	if err := h.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

func (h *host) drawStatus(scr uv.Screen, area uv.Rectangle) {
	theme := h.v.RenderOptions().Theme
	bg := theme.Background

	top := statusText(h.v.Path(), h.v.Scene(), h.v.Camera())
	col := render.WriteText(scr, area, area.Min.X, area.Min.Y, top, theme.Text, bg)
	if st := h.s.Status(); st.Text != "" {
		render.WriteText(scr, area, col+2, area.Min.Y, st.Text, st.Level.Color(), bg)
	}

	bottom := render.HintText + "  |  " + keyHints
	render.WriteText(scr, area, area.Min.X, area.Max.Y-1, bottom, theme.Text, bg)
}

// statusText is the top status row: file name, counts and zoom.
func statusText(path string, scene *models.Scene, cam render.Camera) string {
	name := "(none)"
	if path != "" {
		name = filepath.Base(path)
	}
	return fmt.Sprintf(" %s  |  %s  |  zoom %.2fx", name, render.StatsText(scene), cam.Zoom)
}

// cellToPixel maps a terminal cell to the framebuffer pixel at its top half.
func cellToPixel(col, row int) (x, y float64) {
	return float64(col), float64(row * 2)
}

func pointerButton(b uv.MouseButton) viewer.Button {
	switch b {
	case uv.MouseLeft:
		return viewer.ButtonPrimary
	case uv.MouseRight:
		return viewer.ButtonSecondary
	default:
		return viewer.ButtonNone
	}
}
