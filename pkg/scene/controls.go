package scene

import "github.com/taigrr/phong/pkg/render"

// Key names, matching the terminal's key strings.
const (
	KeyQuit        = "escape"
	KeyPause       = "space"
	KeyWireframe   = "x"
	KeyNormals     = "n"
	KeyLightMarker = "l"
	KeyHUD         = "?"
)

// Keys lists every key Controls responds to.
var Keys = []string{KeyQuit, KeyPause, KeyWireframe, KeyNormals, KeyLightMarker, KeyHUD}

// Controls are the view toggles shared by the hosts.
type Controls struct {
	Paused      bool
	Wireframe   bool
	Normals     bool
	LightMarker bool
	HUD         bool
}

// NewControls starts from the overlays enabled in opts.
func NewControls(opts render.Options) Controls {
	return Controls{
		Wireframe:   opts.Wireframe,
		Normals:     opts.Normals,
		LightMarker: opts.LightMarker,
	}
}

// Press applies every key pressed during one tick and reports whether
// any of them asks to quit. Unknown keys are ignored.
func (c *Controls) Press(keys ...string) (quit bool) {
	for _, key := range keys {
		switch key {
		case KeyQuit:
			quit = true
		case KeyPause:
			c.Paused = !c.Paused
		case KeyWireframe:
			c.Wireframe = !c.Wireframe
		case KeyNormals:
			c.Normals = !c.Normals
		case KeyLightMarker:
			c.LightMarker = !c.LightMarker
		case KeyHUD:
			c.HUD = !c.HUD
		}
	}
	return quit
}

// Apply copies the overlay toggles into opts.
func (c Controls) Apply(opts *render.Options) {
	opts.Wireframe = c.Wireframe
	opts.Normals = c.Normals
	opts.LightMarker = c.LightMarker
}

// Speed is the orbit speed multiplier for the current pause state.
func (c Controls) Speed() float64 {
	if c.Paused {
		return 0
	}
	return 1
}
