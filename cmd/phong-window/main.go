// phong-window shows the Phong-shaded cylinder in a desktop window.
//
// Controls:
//
//	Space - Pause/resume the light orbit
//	X     - Toggle wireframe overlay
//	N     - Toggle vertex normals
//	L     - Toggle light marker
//	Esc   - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/scene"
)

// ticksPerSecond is the light orbit rate: one orbit step per tick.
const ticksPerSecond = 50

var (
	configPath = flag.String("config", "", "Path to a YAML scene file")
	scale      = flag.Int("scale", 3, "Window pixels per framebuffer pixel")
)

var errQuit = errors.New("quit")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := scene.Default()
	if *configPath != "" {
		var err error
		if cfg, err = scene.Load(*configPath); err != nil {
			return err
		}
	}
	s, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	g := newGame(s)
	ebiten.SetWindowTitle("phong")
	ebiten.SetWindowSize(s.Width*max(*scale, 1), s.Height*max(*scale, 1))
	ebiten.SetTPS(ticksPerSecond)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

var keys = []struct {
	key  ebiten.Key
	name string
}{
	{ebiten.KeyEscape, scene.KeyQuit},
	{ebiten.KeySpace, scene.KeyPause},
	{ebiten.KeyX, scene.KeyWireframe},
	{ebiten.KeyN, scene.KeyNormals},
	{ebiten.KeyL, scene.KeyLightMarker},
}

type game struct {
	scene    *scene.Scene
	fb       *render.Framebuffer
	renderer *render.Renderer
	state    render.FrameState
	controls scene.Controls
	img      *ebiten.Image
	scratch  []byte
}

func newGame(s *scene.Scene) *game {
	fb := render.NewFramebuffer(s.Width, s.Height)
	return &game{
		scene:    s,
		fb:       fb,
		renderer: render.NewRenderer(fb, s.Options),
		state:    s.State,
		controls: scene.NewControls(s.Options),
	}
}

func (g *game) Update() error {
	var pressed []string
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k.key) {
			pressed = append(pressed, k.name)
		}
	}
	if g.controls.Press(pressed...) {
		return errQuit
	}
	g.controls.Apply(&g.renderer.Options)

	g.state = g.scene.Tick(g.controls.Speed())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.fb.Clear(g.scene.Background)
	g.renderer.Render(g.scene.Mesh, g.state, g.scene.Material)

	if g.img == nil || g.img.Bounds().Dx() != g.fb.Width || g.img.Bounds().Dy() != g.fb.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(g.fb.Width, g.fb.Height)
		g.scratch = make([]byte, 4*len(g.fb.Pixels))
	}

	for i, p := range g.fb.Pixels {
		j := i * 4
		g.scratch[j+0] = p.R
		g.scratch[j+1] = p.G
		g.scratch[j+2] = p.B
		g.scratch[j+3] = p.A
	}
	g.img.WritePixels(g.scratch)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width, g.fb.Height
}
