package render

import (
	"math"

	"github.com/taigrr/meshview/pkg/math3d"
)

// Camera limits and defaults.
const (
	MinZoom = 0.05
	MaxZoom = 20.0

	DefaultRotX = 20.0 // degrees
	DefaultRotY = 0.0  // degrees
	DefaultZoom = 1.0
)

// Lens defaults.
const (
	DefaultFOV      = 600.0 // focal length in pixels at zoom 1
	DefaultDistance = 3.0   // camera distance in normalized model units
	NearEpsilon     = 0.01  // smallest depth used for the perspective divide

	// ReferenceSize is the viewport edge DefaultFOV was tuned for.
	ReferenceSize = 400
)

// Camera is the orbit/zoom/pan state driven by user interaction.
type Camera struct {
	RotX float64 // Rotation about the horizontal axis, degrees (unbounded)
	RotY float64 // Rotation about the vertical axis, degrees (unbounded)
	Zoom float64 // Multiplier on the focal length, clamped to [MinZoom, MaxZoom]
	PanX float64 // Screen-space offset, pixels
	PanY float64 // Screen-space offset, pixels
}

// DefaultCamera returns the camera used after every load and view reset.
func DefaultCamera() Camera {
	return Camera{
		RotX: DefaultRotX,
		RotY: DefaultRotY,
		Zoom: DefaultZoom,
	}
}

// Reset restores the default view.
func (c *Camera) Reset() {
	*c = DefaultCamera()
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// SetZoom sets the zoom factor, clamped.
func (c *Camera) SetZoom(z float64) {
	c.Zoom = ClampZoom(z)
}

// ZoomBy multiplies the zoom factor, clamped.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Rotate adds yaw (about the vertical axis) and pitch (about the horizontal
// axis), both in degrees.
func (c *Camera) Rotate(yaw, pitch float64) {
	c.RotY += yaw
	c.RotX += pitch
}

// Pan moves the projected image by (dx, dy) pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// Wrapped returns the camera with both angles reduced to [0, 360) for
// display. Projection does not need it.
func (c Camera) Wrapped() Camera {
	c.RotX = wrapDegrees(c.RotX)
	c.RotY = wrapDegrees(c.RotY)
	return c
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Lens holds the fixed projection constants.
type Lens struct {
	FOV      float64 // Focal length in pixels at zoom 1
	Distance float64 // Forward translation applied after rotation
}

// DefaultLens returns the lens tuned for a ReferenceSize viewport.
func DefaultLens() Lens {
	return Lens{FOV: DefaultFOV, Distance: DefaultDistance}
}

// ScaledTo returns a lens whose focal length keeps the model's footprint
// proportional to the viewport's shorter edge. Small surfaces such as a
// terminal use this; pixel windows keep the fixed constant.
func (l Lens) ScaledTo(vp Viewport) Lens {
	vp = vp.OrDefault()
	edge := min(vp.Width, vp.Height)
	l.FOV = l.FOV * float64(edge) / ReferenceSize
	return l
}

// Projector maps model-space points to screen space for one camera state
// and viewport. Build one per frame.
type Projector struct {
	rot      math3d.Mat4
	focal    float64
	distance float64
	cx, cy   float64
}

// NewProjector precomputes the rotation and screen mapping.
func NewProjector(cam Camera, vp Viewport, lens Lens) Projector {
	vp = vp.OrDefault()

	// X rotation is applied first, then Y.
	rot := math3d.RotateY(math3d.Radians(cam.RotY)).Mul(math3d.RotateX(math3d.Radians(cam.RotX)))

	return Projector{
		rot:      rot,
		focal:    lens.FOV * cam.Zoom,
		distance: lens.Distance,
		cx:       float64(vp.Width)/2 + cam.PanX,
		cy:       float64(vp.Height)/2 + cam.PanY,
	}
}

// Project returns the screen position of v and the depth used for sorting
// (the translated z before the divide, clamped to NearEpsilon).
func (p Projector) Project(v math3d.Vec3) (x, y, depth float64) {
	r := p.rot.MulVec3(v)

	z := r.Z + p.distance
	if z < NearEpsilon {
		z = NearEpsilon
	}

	// Screen Y grows downward
	x = r.X*p.focal/z + p.cx
	y = -r.Y*p.focal/z + p.cy
	return x, y, z
}
