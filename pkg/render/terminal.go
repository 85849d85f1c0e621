package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw copies the framebuffer into terminal cells. Each cell shows two
// framebuffer rows with an upper half block: the foreground is the top
// pixel and the background the bottom pixel. The framebuffer height should
// be twice the number of rows in area.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// TerminalPresenter presents framebuffers on an ultraviolet terminal.
type TerminalPresenter struct {
	term *uv.Terminal
}

// NewTerminalPresenter wraps a started terminal.
func NewTerminalPresenter(term *uv.Terminal) *TerminalPresenter {
	return &TerminalPresenter{term: term}
}

// Present draws fb over the whole terminal and flushes the changed cells.
func (p *TerminalPresenter) Present(fb *Framebuffer) error {
	fb.Draw(p.term, p.term.Bounds())
	return p.term.Display()
}

// rgbaToColor converts color.RGBA to the color.Color expected by cells.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = terminal default
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors used by hosts and overlays.
var (
	ColorBlack  = color.RGBA{0, 0, 0, 255}
	ColorWhite  = color.RGBA{255, 255, 255, 255}
	ColorRed    = color.RGBA{255, 0, 0, 255}
	ColorYellow = color.RGBA{255, 255, 0, 255}
	ColorCyan   = color.RGBA{0, 255, 255, 255}
	ColorGray   = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
