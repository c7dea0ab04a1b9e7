// Package render turns a Scene and Camera into a Frame of shaded, depth-sorted
// polygons, and paints Frames into pixel or terminal surfaces.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Framebuffer is a 2D array of pixels that can be rendered to the terminal.
// We use double vertical resolution by using half-block characters (▀▄).
type Framebuffer struct {
	Width  int          // Width in "pixels" (same as terminal columns)
	Height int          // Height in "pixels" (2x terminal rows due to half-blocks)
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
// Height should be 2x the desired terminal rows for half-block rendering.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Resize changes the dimensions, reusing the pixel slice when it is large
// enough. Contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	fb.Width, fb.Height = width, height
	n := width * height
	if cap(fb.Pixels) < n {
		fb.Pixels = make([]color.RGBA, n)
		return
	}
	fb.Pixels = fb.Pixels[:n]
}

// Viewport returns the framebuffer size as a render viewport.
func (fb *Framebuffer) Viewport() Viewport {
	return Viewport{Width: fb.Width, Height: fb.Height}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// Paint clears the framebuffer and draws frame into it: grid, then polygons
// in frame order, then labels. Frames built for a different size are drawn
// clipped.
func (fb *Framebuffer) Paint(frame Frame) {
	fb.Clear(frame.Background)

	for _, l := range frame.Grid {
		fb.DrawLine(l.X0, l.Y0, l.X1, l.Y1, l.Color)
	}

	for _, p := range frame.Polygons {
		fb.FillTriangle(p.Points[0], p.Points[1], p.Points[2], p.Color)
	}

	for _, l := range frame.Labels {
		fb.DrawLabel(l)
	}
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillTriangle fills the triangle (a, b, c) with a solid color using a
// scanline fill. A pixel is covered when its center lies inside the
// triangle; either winding is accepted and no outline is drawn.
func (fb *Framebuffer) FillTriangle(a, b, c Point, col color.RGBA) {
	// Sort vertices by Y (top to bottom)
	if a.Y > b.Y {
		a, b = b, a
	}
	if b.Y > c.Y {
		b, c = c, b
	}
	if a.Y > b.Y {
		a, b = b, a
	}

	if c.Y == a.Y || !finite(a, b, c) {
		return
	}

	yStart := max(0, int(math.Ceil(a.Y-0.5)))
	yEnd := min(fb.Height, int(math.Ceil(c.Y-0.5)))

	for y := yStart; y < yEnd; y++ {
		fy := float64(y) + 0.5

		// Long edge a->c spans every scanline
		xLong := edgeX(a, c, fy)

		var xShort float64
		if fy < b.Y {
			xShort = edgeX(a, b, fy)
		} else {
			xShort = edgeX(b, c, fy)
		}

		xl, xr := xLong, xShort
		if xl > xr {
			xl, xr = xr, xl
		}

		xStart := max(0, int(math.Ceil(xl-0.5)))
		xEnd := min(fb.Width, int(math.Ceil(xr-0.5)))

		row := y * fb.Width
		for x := xStart; x < xEnd; x++ {
			fb.Pixels[row+x] = col
		}
	}
}

// edgeX returns the x where the edge p->q crosses y. Horizontal edges
// return p.X.
func edgeX(p, q Point, y float64) float64 {
	if q.Y == p.Y {
		return p.X
	}
	t := (y - p.Y) / (q.Y - p.Y)
	return p.X + t*(q.X-p.X)
}

func finite(pts ...Point) bool {
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// CopyTo writes the pixels into dst, which must be Width*Height*4 bytes of
// RGBA data.
func (fb *Framebuffer) CopyTo(dst []byte) {
	for i, p := range fb.Pixels {
		o := i * 4
		if o+3 >= len(dst) {
			return
		}
		dst[o], dst[o+1], dst[o+2], dst[o+3] = p.R, p.G, p.B, p.A
	}
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
