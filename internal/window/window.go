// Package window hosts the viewer in a desktop window using ebiten.
package window

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/taigrr/meshview/internal/session"
	"github.com/taigrr/meshview/pkg/render"
	"github.com/taigrr/meshview/pkg/viewer"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultTitle  = "meshview"
)

// heldStep is the drag distance in pixels applied per tick while an arrow
// key is held.
const heldStep = 3

// Options configures Run.
type Options struct {
	Logger   *log.Logger
	Files    []string
	Title    string
	Width    int
	Height   int
	Watch    bool
	Debounce time.Duration
}

type action int

const (
	actNone action = iota
	actQuit
	actReset
	actReload
	actNext
	actPrev
	actZoomIn
	actZoomOut
)

// pointer is one tick of mouse state.
type pointer struct {
	X, Y     float64
	Pressed  viewer.Button // Button that went down this tick
	Released bool
	Wheel    float64
}

type game struct {
	ctx   context.Context
	v     *viewer.Viewer
	s     *session.Session
	fb    *render.Framebuffer
	pix   []byte
	img   *ebiten.Image
	dirty bool
}

func newGame(ctx context.Context, v *viewer.Viewer, opts Options) *game {
	g := &game{
		ctx:   ctx,
		v:     v,
		s:     session.New(v, opts.Files, opts.Logger),
		fb:    render.NewFramebuffer(0, 0),
		dirty: true,
	}
	v.SetRedraw(func() { g.dirty = true })
	g.s.OnChange(func() { g.dirty = true })
	return g
}

// Run opens the first file and shows the viewer in a window until it is
// closed, the user quits or ctx is cancelled.
func Run(ctx context.Context, v *viewer.Viewer, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}

	g := newGame(ctx, v, opts)
	if err := g.s.Open(); err != nil {
		return err
	}
	if opts.Watch {
		if err := g.s.Watch(opts.Debounce); err != nil {
			return err
		}
		defer g.s.Close()
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	select {
	case r := <-g.s.Results():
		g.s.Finish(r)
	case <-g.s.Reloads():
		g.s.Reload()
	default:
	}

	g.pointer(readPointer())

	if g.act(readAction()) {
		return ebiten.Termination
	}
	dx, dy := heldArrows()
	if dx != 0 || dy != 0 {
		g.v.Rotate(dx, dy)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	w, h := g.fb.Width, g.fb.Height
	if w == 0 || h == 0 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.pix = make([]byte, w*h*4)
		g.dirty = true
	}

	if g.dirty {
		g.paint()
		g.fb.CopyTo(g.pix)
		g.img.WritePixels(g.pix)
	}
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.fb.Width || outsideHeight != g.fb.Height {
		g.fb.Resize(outsideWidth, outsideHeight)
		g.v.Resize(outsideWidth, outsideHeight)
		g.dirty = true
	}
	return outsideWidth, outsideHeight
}

// paint renders the current frame, with the session status under the
// statistics line.
func (g *game) paint() {
	g.dirty = false
	frame := g.v.Frame()
	if st := g.s.Status(); st.Text != "" {
		frame.Labels = append(frame.Labels, render.Label{
			X:     8,
			Y:     32,
			Text:  st.Text,
			Color: st.Level.Color(),
		})
	}
	g.fb.Paint(frame)
}

func (g *game) pointer(p pointer) {
	switch {
	case p.Pressed != viewer.ButtonNone:
		g.v.Press(p.Pressed, p.X, p.Y)
	case g.v.Mode() != viewer.Idle:
		g.v.Drag(p.X, p.Y)
	}
	if p.Released {
		g.v.Release()
	}
	if n := notches(p.Wheel); n != 0 {
		g.v.Scroll(n)
	}
}

// act applies a key action. It returns true to quit.
func (g *game) act(a action) bool {
	switch a {
	case actQuit:
		return true
	case actReset:
		g.v.ResetView()
	case actReload:
		g.s.Reload()
	case actNext:
		g.s.Next()
	case actPrev:
		g.s.Prev()
	case actZoomIn:
		g.v.Scroll(1)
	case actZoomOut:
		g.v.Scroll(-1)
	}
	return false
}

// notches turns a wheel offset into whole zoom steps. Trackpads report
// fractions; any movement counts as one step in its direction.
func notches(wheel float64) int {
	switch {
	case wheel > 0:
		return 1
	case wheel < 0:
		return -1
	default:
		return 0
	}
}

func readPointer() pointer {
	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	p := pointer{X: float64(x), Y: float64(y), Wheel: wy}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		p.Pressed = viewer.ButtonPrimary
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		p.Pressed = viewer.ButtonSecondary
	}
	p.Released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight)
	return p
}

func readAction() action {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return actQuit
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if shift {
			return actReload
		}
		return actReset
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		return actNext
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		return actPrev
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if shift {
			return actPrev
		}
		return actNext
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		return actZoomIn
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		return actZoomOut
	}
	return actNone
}

func heldArrows() (dx, dy float64) {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		dx -= heldStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		dx += heldStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		dy -= heldStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		dy += heldStep
	}
	return dx, dy
}
