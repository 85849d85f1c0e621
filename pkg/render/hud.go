package render

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// HUDFont is the font used for on-screen text.
var HUDFont tinyfont.Fonter = &proggy.TinySZ8pt7b

// fbDisplayer lets tinyfont draw into a Framebuffer.
type fbDisplayer struct {
	fb *Framebuffer
}

var _ drivers.Displayer = (*fbDisplayer)(nil)

func (d *fbDisplayer) Size() (x, y int16) {
	return int16(d.fb.Width), int16(d.fb.Height)
}

func (d *fbDisplayer) SetPixel(x, y int16, c color.RGBA) {
	d.fb.SetPixel(int(x), int(y), c)
}

func (d *fbDisplayer) Display() error { return nil }

// DrawText writes one line of text with its top-left corner at (x, y).
func DrawText(fb *Framebuffer, x, y int, text string, c Color) {
	_, height := TextSize(text)
	tinyfont.WriteLine(&fbDisplayer{fb: fb}, HUDFont, int16(x), int16(y+height), text, c)
}

// TextSize returns the width and line height of text in pixels.
func TextSize(text string) (width, height int) {
	_, outbox := tinyfont.LineWidth(HUDFont, text)
	return int(outbox), int(HUDFont.GetYAdvance())
}
