package scene

import (
	"testing"

	"github.com/taigrr/phong/pkg/render"
)

func TestControlsPress(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		want     Controls
		wantQuit bool
	}{
		{"nothing", nil, Controls{}, false},
		{"single toggle", []string{KeyWireframe}, Controls{Wireframe: true}, false},
		{"toggle twice", []string{KeyNormals, KeyNormals}, Controls{}, false},
		{
			name: "simultaneous keys all apply",
			keys: []string{KeyPause, KeyWireframe, KeyNormals, KeyLightMarker, KeyHUD},
			want: Controls{Paused: true, Wireframe: true, Normals: true, LightMarker: true, HUD: true},
		},
		{"quit with toggle", []string{KeyWireframe, KeyQuit}, Controls{Wireframe: true}, true},
		{"unknown key", []string{"z"}, Controls{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Controls
			quit := c.Press(tc.keys...)
			if quit != tc.wantQuit {
				t.Errorf("quit = %v, want %v", quit, tc.wantQuit)
			}
			if c != tc.want {
				t.Errorf("controls = %+v, want %+v", c, tc.want)
			}
		})
	}
}

func TestControlsApplyAndSpeed(t *testing.T) {
	c := NewControls(render.Options{Normals: true})
	c.Press(KeyWireframe, KeyPause)

	opts := render.Options{Workers: 4}
	c.Apply(&opts)
	if !opts.Wireframe || !opts.Normals || opts.LightMarker || opts.Workers != 4 {
		t.Errorf("options = %+v", opts)
	}
	if c.Speed() != 0 {
		t.Errorf("paused speed = %g, want 0", c.Speed())
	}
	c.Press(KeyPause)
	if c.Speed() != 1 {
		t.Errorf("running speed = %g, want 1", c.Speed())
	}
}
