package render

import (
	"image/color"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func cellColor(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{}
	}
	r, ok := c.(color.RGBA)
	if !ok {
		return color.RGBAModel.Convert(c).(color.RGBA)
	}
	return r
}

func TestFramebufferDrawHalfBlocks(t *testing.T) {
	fb := NewFramebuffer(2, 4)
	top := RGB(255, 0, 0)
	bot := RGB(0, 0, 255)
	fb.SetPixel(1, 2, top)
	fb.SetPixel(1, 3, bot)

	scr := uv.NewScreenBuffer(2, 2)
	fb.Draw(scr, scr.Bounds())

	cell := scr.CellAt(1, 1)
	if cell == nil {
		t.Fatal("CellAt(1, 1) = nil")
	}
	if cell.Content != "▀" {
		t.Errorf("cell content = %q, want %q", cell.Content, "▀")
	}
	if got := cellColor(cell.Style.Fg); got != top {
		t.Errorf("fg = %v, want %v", got, top)
	}
	if got := cellColor(cell.Style.Bg); got != bot {
		t.Errorf("bg = %v, want %v", got, bot)
	}
}

func TestFramebufferDrawLabels(t *testing.T) {
	fb := NewFramebuffer(20, 8)
	bg := RGB(13, 13, 26)
	fb.Clear(bg)
	text := RGB(112, 112, 160)

	scr := uv.NewScreenBuffer(20, 4)
	fb.Draw(scr, scr.Bounds())
	fb.DrawLabels(scr, scr.Bounds(), []Label{
		{X: 10, Y: 4, Text: "abcd", Color: text, Align: AlignCenter},
		{X: 18, Y: 0, Text: "xyz", Color: text},
		{X: 0, Y: 40, Text: "offscreen", Color: text},
	})

	// Centered on column 10, row 2
	want := "abcd"
	for i, ch := range want {
		cell := scr.CellAt(8+i, 2)
		if cell == nil || cell.Content != string(ch) {
			t.Fatalf("cell (%d, 2) = %+v, want %q", 8+i, cell, ch)
		}
		if got := cellColor(cell.Style.Fg); got != text {
			t.Errorf("fg = %v, want %v", got, text)
		}
		if got := cellColor(cell.Style.Bg); got != bg {
			t.Errorf("bg = %v, want %v", got, bg)
		}
	}

	// Clipped at the right edge
	if cell := scr.CellAt(19, 0); cell == nil || cell.Content != "y" {
		t.Errorf("cell (19, 0) = %+v, want %q", cell, "y")
	}
}

func TestWriteText(t *testing.T) {
	scr := uv.NewScreenBuffer(5, 2)
	area := scr.Bounds()
	next := WriteText(scr, area, 1, 1, "hello", RGB(1, 1, 1), RGB(2, 2, 2))
	if next != 5 {
		t.Errorf("WriteText returned column %d, want 5", next)
	}
	if cell := scr.CellAt(4, 1); cell == nil || cell.Content != "l" {
		t.Errorf("cell (4, 1) = %+v, want %q", cell, "l")
	}
	if got := WriteText(scr, area, 0, 9, "x", RGB(1, 1, 1), RGB(2, 2, 2)); got != 0 {
		t.Errorf("WriteText on a hidden row returned %d, want 0", got)
	}
}
