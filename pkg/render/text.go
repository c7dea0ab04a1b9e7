package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelFace is the fixed 7x13 bitmap font used for overlay text.
var labelFace font.Face = basicfont.Face7x13

// TextWidth returns the width of s in pixels when drawn with the label font.
func TextWidth(s string) int {
	return font.MeasureString(labelFace, s).Ceil()
}

// DrawLabel draws one overlay label into the framebuffer.
func (fb *Framebuffer) DrawLabel(l Label) {
	x := l.X
	if l.Align == AlignCenter {
		x -= TextWidth(l.Text) / 2
	}

	d := font.Drawer{
		Dst:  fbImage{fb},
		Src:  image.NewUniform(l.Color),
		Face: labelFace,
		Dot:  fixed.P(x, l.Y),
	}
	d.DrawString(l.Text)
}

// fbImage adapts a Framebuffer to draw.Image for the font drawer.
type fbImage struct {
	fb *Framebuffer
}

func (i fbImage) ColorModel() color.Model { return color.RGBAModel }

func (i fbImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.fb.Width, i.fb.Height)
}

func (i fbImage) At(x, y int) color.Color { return i.fb.GetPixel(x, y) }

func (i fbImage) Set(x, y int, c color.Color) {
	i.fb.SetPixel(x, y, color.RGBAModel.Convert(c).(color.RGBA))
}
