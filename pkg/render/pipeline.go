package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
)

// Shading constants.
const (
	Ambient = 0.2
	Diffuse = 0.8
)

// DefaultGridSpacing is the distance between background grid lines, in pixels.
const DefaultGridSpacing = 40

// Overlay text.
const (
	HintText         = "Left drag: rotate  |  Right drag: pan  |  Wheel: zoom"
	PlaceholderTitle = "No mesh loaded"
	PlaceholderHint  = "Open a file or convert a mod first"
)

// Overlay placement, in pixels.
const (
	labelMargin     = 8
	hintBaseline    = 16
	placeholderStep = 12
)

// DefaultLight returns the fixed directional light. It is not normalized.
// It comes mostly from +X, then +Z, then +Y.
func DefaultLight() math3d.Vec3 {
	return math3d.V3(0.8, 0.3, 0.5)
}

// Viewport is the drawing surface size in pixels.
type Viewport struct {
	Width  int
	Height int
}

// OrDefault returns vp, or a ReferenceSize square if either edge is not
// positive.
func (vp Viewport) OrDefault() Viewport {
	if vp.Width <= 0 || vp.Height <= 0 {
		return Viewport{Width: ReferenceSize, Height: ReferenceSize}
	}
	return vp
}

// Theme holds the colors of everything that is not a mesh.
type Theme struct {
	Background color.RGBA
	Grid       color.RGBA
	Text       color.RGBA
}

// DefaultTheme returns the dark theme.
func DefaultTheme() Theme {
	return Theme{
		Background: RGB(0x0d, 0x0d, 0x1a),
		Grid:       RGB(0x1e, 0x1e, 0x3a),
		Text:       RGB(0x70, 0x70, 0xa0),
	}
}

// Options configures Render. Zero fields take their defaults.
type Options struct {
	Lens        Lens
	Light       math3d.Vec3
	Theme       Theme
	GridSpacing int
	HideOverlay bool // Suppresses the stats and hint labels (not the placeholder)
}

// DefaultOptions returns the options used by the viewer hosts.
func DefaultOptions() Options {
	return Options{
		Lens:        DefaultLens(),
		Light:       DefaultLight(),
		Theme:       DefaultTheme(),
		GridSpacing: DefaultGridSpacing,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Lens.FOV == 0 {
		o.Lens.FOV = d.Lens.FOV
	}
	if o.Lens.Distance == 0 {
		o.Lens.Distance = d.Lens.Distance
	}
	if o.Light == (math3d.Vec3{}) {
		o.Light = d.Light
	}
	if o.Theme == (Theme{}) {
		o.Theme = d.Theme
	}
	if o.GridSpacing <= 0 {
		o.GridSpacing = d.GridSpacing
	}
	return o
}

// Point is a screen-space position.
type Point struct {
	X, Y float64
}

// Polygon is a projected, shaded triangle ready to fill.
type Polygon struct {
	Points [3]Point
	Depth  float64 // Mean of the three projected depths
	Color  color.RGBA
	Mesh   int // Index of the source sub-mesh
}

// Line is a one-pixel grid line.
type Line struct {
	X0, Y0, X1, Y1 int
	Color          color.RGBA
}

// Align controls how a Label's X is interpreted.
type Align int

const (
	AlignLeft   Align = iota // X is the left edge
	AlignCenter              // X is the horizontal center
)

// Label is a line of overlay text. Y is the text baseline.
type Label struct {
	X, Y  int
	Text  string
	Color color.RGBA
	Align Align
}

// Stats counts what happened to each triangle during one Render.
type Stats struct {
	Drawn   int // Polygons in the frame
	Culled  int // Back-facing triangles
	Skipped int // Triangles with an out-of-range index
}

// Frame is the complete description of one redraw. Painting a Frame in
// order (background, grid, polygons, labels) produces the image.
type Frame struct {
	Width      int
	Height     int
	Background color.RGBA
	Grid       []Line
	Polygons   []Polygon // Back to front
	Labels     []Label
	Stats      Stats
}

// Render projects, culls, shades and depth-sorts every triangle of scene.
// It keeps no state between calls. A nil or empty scene yields the grid and
// a placeholder message.
//
// Ordering is by whole-triangle mean depth, so intersecting or cyclically
// overlapping triangles may composite incorrectly.
func Render(scene *models.Scene, cam Camera, vp Viewport, opts Options) Frame {
	vp = vp.OrDefault()
	opts = opts.withDefaults()

	frame := Frame{
		Width:      vp.Width,
		Height:     vp.Height,
		Background: opts.Theme.Background,
		Grid:       gridLines(vp, opts.GridSpacing, opts.Theme.Grid),
	}

	if scene.Empty() {
		frame.Labels = placeholderLabels(vp, opts.Theme.Text)
		return frame
	}

	proj := NewProjector(cam, vp, opts.Lens)
	frame.Polygons = make([]Polygon, 0, scene.TriangleCount())

	for mi := range scene.Meshes {
		mesh := &scene.Meshes[mi]
		for _, tri := range mesh.Triangles {
			if !mesh.Valid(tri) {
				frame.Stats.Skipped++
				continue
			}

			va := mesh.Vertices[tri[0]]
			vb := mesh.Vertices[tri[1]]
			vc := mesh.Vertices[tri[2]]

			ax, ay, az := proj.Project(va)
			bx, by, bz := proj.Project(vb)
			cx, cy, cz := proj.Project(vc)

			if SignedArea(ax, ay, bx, by, cx, cy) > 0 {
				frame.Stats.Culled++
				continue
			}

			frame.Polygons = append(frame.Polygons, Polygon{
				Points: [3]Point{{ax, ay}, {bx, by}, {cx, cy}},
				Depth:  (az + bz + cz) / 3,
				Color:  Shade(mesh.Color, FaceNormal(va, vb, vc), opts.Light),
				Mesh:   mi,
			})
		}
	}

	// Farthest first
	sort.SliceStable(frame.Polygons, func(i, j int) bool {
		return frame.Polygons[i].Depth > frame.Polygons[j].Depth
	})

	frame.Stats.Drawn = len(frame.Polygons)
	if !opts.HideOverlay {
		frame.Labels = overlayLabels(scene, vp, opts.Theme.Text)
	}
	return frame
}

// SignedArea returns twice the signed area of the screen-space triangle
// (a, b, c). Positive values are back-facing.
func SignedArea(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// FaceNormal returns the unit normal of the model-space triangle (a, b, c).
// A degenerate triangle yields the zero vector.
func FaceNormal(a, b, c math3d.Vec3) math3d.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Shade applies Lambertian diffuse plus ambient lighting to base.
func Shade(base color.RGBA, normal, light math3d.Vec3) color.RGBA {
	diffuse := math.Max(0, normal.Dot(light))
	intensity := Ambient + Diffuse*diffuse
	return color.RGBA{
		R: scaleChannel(base.R, intensity),
		G: scaleChannel(base.G, intensity),
		B: scaleChannel(base.B, intensity),
		A: 255,
	}
}

func scaleChannel(c uint8, intensity float64) uint8 {
	v := int(float64(c) * intensity)
	return uint8(max(0, min(255, v)))
}

func gridLines(vp Viewport, spacing int, c color.RGBA) []Line {
	lines := make([]Line, 0, vp.Width/spacing+vp.Height/spacing+2)
	for x := 0; x < vp.Width; x += spacing {
		lines = append(lines, Line{X0: x, Y0: 0, X1: x, Y1: vp.Height - 1, Color: c})
	}
	for y := 0; y < vp.Height; y += spacing {
		lines = append(lines, Line{X0: 0, Y0: y, X1: vp.Width - 1, Y1: y, Color: c})
	}
	return lines
}

// StatsText formats the mesh, vertex and triangle counts of scene.
func StatsText(scene *models.Scene) string {
	return fmt.Sprintf("%d mesh  |  %d verts  |  %d tris",
		scene.MeshCount(), scene.VertexCount(), scene.TriangleCount())
}

func overlayLabels(scene *models.Scene, vp Viewport, c color.RGBA) []Label {
	return []Label{
		{X: labelMargin, Y: labelMargin + hintBaseline/2, Text: StatsText(scene), Color: c},
		{X: labelMargin, Y: vp.Height - hintBaseline/2, Text: HintText, Color: c},
	}
}

func placeholderLabels(vp Viewport, c color.RGBA) []Label {
	cx, cy := vp.Width/2, vp.Height/2
	return []Label{
		{X: cx, Y: cy - placeholderStep/2, Text: PlaceholderTitle, Color: c, Align: AlignCenter},
		{X: cx, Y: cy + placeholderStep, Text: PlaceholderHint, Color: c, Align: AlignCenter},
	}
}
