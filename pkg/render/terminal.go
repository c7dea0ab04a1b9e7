package render

import (
	"image/color"
	"unicode/utf8"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the internal framebuffer to terminal cells and draws them on
// the screen.
// The framebuffer height should be 2x the terminal height.
func (r *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < r.Width; col++ {
			topColor := r.GetPixel(col, topY)
			botColor := r.GetPixel(col, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// DrawLabels writes labels as text cells over an already drawn framebuffer.
// Label coordinates are framebuffer pixels; each cell is one pixel wide and
// two tall. The cell background keeps the color of the pixels underneath.
func (r *Framebuffer) DrawLabels(scr uv.Screen, area uv.Rectangle, labels []Label) {
	for _, l := range labels {
		col := l.X
		if l.Align == AlignCenter {
			col -= utf8.RuneCountInString(l.Text) / 2
		}
		row := l.Y / 2
		if row < area.Min.Y || row >= area.Max.Y {
			continue
		}

		for _, ch := range l.Text {
			if col >= area.Max.X {
				break
			}
			if col >= area.Min.X {
				bg := r.GetPixel(col, row*2)
				WriteCell(scr, col, row, ch, l.Color, bg)
			}
			col++
		}
	}
}

// WriteText writes s on one terminal row starting at col, clipped to area.
// It returns the column after the last rune written.
func WriteText(scr uv.Screen, area uv.Rectangle, col, row int, s string, fg, bg color.RGBA) int {
	if row < area.Min.Y || row >= area.Max.Y {
		return col
	}
	for _, ch := range s {
		if col >= area.Max.X {
			break
		}
		if col >= area.Min.X {
			WriteCell(scr, col, row, ch, fg, bg)
		}
		col++
	}
	return col
}

// WriteCell sets one single-width text cell.
func WriteCell(scr uv.Screen, col, row int, ch rune, fg, bg color.RGBA) {
	scr.SetCell(col, row, &uv.Cell{
		Content: string(ch),
		Width:   1,
		Style: uv.Style{
			Fg: rgbaToColor(fg),
			Bg: rgbaToColor(bg),
		},
	})
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
