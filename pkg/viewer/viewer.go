// Package viewer implements the interaction controller: it owns the current
// Scene and Camera, turns pointer, scroll, resize and load requests into
// state changes, and asks the host to redraw.
package viewer

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/render"
)

// Interaction constants.
const (
	DefaultRotateSpeed = 0.5 // degrees per pixel of drag
	ZoomInFactor       = 1.1
	ZoomOutFactor      = 0.9
)

// ErrNothingLoaded is returned by Reload before any file has loaded.
var ErrNothingLoaded = errors.New("no file loaded")

// Mode is the current pointer interaction.
type Mode int

const (
	Idle     Mode = iota // No button held
	Rotating             // Primary button held
	Panning              // Secondary button held
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Panning:
		return "panning"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
)

// Viewer holds the scene, camera and interaction state. It is not safe for
// concurrent use: hosts call it from their event goroutine. Files may be
// read elsewhere with LoadFile and handed over with Apply.
type Viewer struct {
	scene    *models.Scene
	stats    models.LoadStats
	path     string
	camera   render.Camera
	viewport render.Viewport

	mode         Mode
	lastX, lastY float64

	rotateSpeed float64
	renderOpts  render.Options
	loadOpts    models.LoadOptions
	logger      *log.Logger
	onRedraw    func()
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithRenderOptions sets the options passed to render.Render.
func WithRenderOptions(o render.Options) Option {
	return func(v *Viewer) { v.renderOpts = o }
}

// WithLoadOptions sets the options passed to the mesh loader.
func WithLoadOptions(o models.LoadOptions) Option {
	return func(v *Viewer) { v.loadOpts = o }
}

// WithRotateSpeed sets the drag sensitivity in degrees per pixel.
func WithRotateSpeed(degPerPixel float64) Option {
	return func(v *Viewer) {
		if degPerPixel > 0 {
			v.rotateSpeed = degPerPixel
		}
	}
}

// WithViewport sets the initial viewport size.
func WithViewport(width, height int) Option {
	return func(v *Viewer) { v.viewport = render.Viewport{Width: width, Height: height} }
}

// OnRedraw sets the function called after every state change that needs
// a new frame.
func OnRedraw(fn func()) Option {
	return func(v *Viewer) { v.onRedraw = fn }
}

// New creates a viewer with an empty scene and the default camera.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		scene:       models.NewScene(),
		camera:      render.DefaultCamera(),
		rotateSpeed: DefaultRotateSpeed,
		renderOpts:  render.DefaultOptions(),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetRedraw replaces the redraw hook.
func (v *Viewer) SetRedraw(fn func()) {
	v.onRedraw = fn
}

func (v *Viewer) redraw() {
	if v.onRedraw != nil {
		v.onRedraw()
	}
}

// Scene returns the current (normalized) scene. Callers must not modify it.
func (v *Viewer) Scene() *models.Scene { return v.scene }

// Camera returns the current camera state.
func (v *Viewer) Camera() render.Camera { return v.camera }

// Viewport returns the current viewport size.
func (v *Viewer) Viewport() render.Viewport { return v.viewport }

// Mode returns the current interaction mode.
func (v *Viewer) Mode() Mode { return v.mode }

// RotateSpeed returns the drag sensitivity in degrees per pixel.
func (v *Viewer) RotateSpeed() float64 { return v.rotateSpeed }

// Path returns the last successfully loaded file, or "".
func (v *Viewer) Path() string { return v.path }

// Stats returns the loader statistics of the current scene.
func (v *Viewer) Stats() models.LoadStats { return v.stats }

// RenderOptions returns the options passed to render.Render.
func (v *Viewer) RenderOptions() render.Options { return v.renderOpts }

// SetRenderOptions replaces the render options, for example when a host
// rescales the lens after a resize.
func (v *Viewer) SetRenderOptions(o render.Options) {
	v.renderOpts = o
	v.redraw()
}

// LoadOptions returns the options used for loading files.
func (v *Viewer) LoadOptions() models.LoadOptions { return v.loadOpts }

// Frame renders the current state.
func (v *Viewer) Frame() render.Frame {
	return render.Render(v.scene, v.camera, v.viewport, v.renderOpts)
}

// Load reads and normalizes path, then replaces the scene and resets the
// camera. On failure the current scene and camera are kept.
func (v *Viewer) Load(path string) error {
	l, err := LoadFile(path, v.loadOpts)
	if err != nil {
		v.logger.Error("load failed", "path", path, "err", err)
		return err
	}
	v.Apply(l)
	return nil
}

// Reload reads the last loaded file again, keeping the camera.
func (v *Viewer) Reload() error {
	if v.path == "" {
		return ErrNothingLoaded
	}
	l, err := LoadFile(v.path, v.loadOpts)
	if err != nil {
		v.logger.Error("reload failed", "path", v.path, "err", err)
		return err
	}
	v.Replace(l)
	return nil
}

// Apply installs a loaded file and resets the camera.
func (v *Viewer) Apply(l *Loaded) {
	v.install(l)
	v.camera.Reset()
	v.mode = Idle
	v.redraw()
}

// Replace installs a loaded file and keeps the camera, as a reload does.
func (v *Viewer) Replace(l *Loaded) {
	v.install(l)
	v.redraw()
}

func (v *Viewer) install(l *Loaded) {
	v.scene = l.Scene
	v.stats = l.Stats
	v.path = l.Path

	v.logger.Info("loaded mesh",
		"path", l.Path,
		"meshes", l.Scene.MeshCount(),
		"vertices", l.Scene.VertexCount(),
		"triangles", l.Scene.TriangleCount(),
		"skipped", l.Stats.SkippedLines,
	)
	if l.Scene.Empty() {
		v.logger.Warn("no drawable geometry", "path", l.Path, "vertices", l.Stats.Vertices)
	}
}

// SetScene normalizes scene and makes it current with a reset camera. The
// input is not modified. The loaded path is cleared.
func (v *Viewer) SetScene(scene *models.Scene) {
	v.scene = models.Normalize(scene)
	v.stats = models.LoadStats{}
	v.path = ""
	v.camera.Reset()
	v.mode = Idle
	v.redraw()
}

// ResetView restores the default camera.
func (v *Viewer) ResetView() {
	v.camera.Reset()
	v.redraw()
}

// Resize sets the viewport size. Camera and scene are unchanged.
func (v *Viewer) Resize(width, height int) {
	v.viewport = render.Viewport{Width: width, Height: height}
	v.redraw()
}

// Press starts rotating (primary) or panning (secondary) from (x, y).
// Other buttons are ignored.
func (v *Viewer) Press(b Button, x, y float64) {
	switch b {
	case ButtonPrimary:
		v.mode = Rotating
	case ButtonSecondary:
		v.mode = Panning
	default:
		return
	}
	v.lastX, v.lastY = x, y
}

// Drag moves the pointer to (x, y). While a button is held the camera
// follows the delta from the previous position.
func (v *Viewer) Drag(x, y float64) {
	if v.mode == Idle {
		return
	}
	dx, dy := x-v.lastX, y-v.lastY
	v.lastX, v.lastY = x, y

	switch v.mode {
	case Rotating:
		v.camera.Rotate(dx*v.rotateSpeed, dy*v.rotateSpeed)
	case Panning:
		v.camera.Pan(dx, dy)
	}
	v.redraw()
}

// Release returns to Idle.
func (v *Viewer) Release() {
	v.mode = Idle
}

// Rotate turns the camera as a drag of (dx, dy) pixels would, without
// touching the interaction mode.
func (v *Viewer) Rotate(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	v.camera.Rotate(dx*v.rotateSpeed, dy*v.rotateSpeed)
	v.redraw()
}

// Scroll zooms by one step per notch: positive notches zoom in, negative
// zoom out. Zoom stays within [render.MinZoom, render.MaxZoom].
func (v *Viewer) Scroll(notches int) {
	if notches == 0 {
		return
	}
	for ; notches > 0; notches-- {
		v.camera.ZoomBy(ZoomInFactor)
	}
	for ; notches < 0; notches++ {
		v.camera.ZoomBy(ZoomOutFactor)
	}
	v.redraw()
}
