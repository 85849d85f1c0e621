// phong - Terminal Phong-shaded cylinder
// Renders a tessellated cylinder lit by an orbiting point light, shading
// every pixel with the Phong reflection model.
//
// Controls:
//
//	Space       - Pause/resume the light orbit (eased)
//	X           - Toggle wireframe overlay
//	N           - Toggle vertex normals
//	L           - Toggle light marker
//	?           - Toggle HUD overlay (FPS, triangle counts, light angle)
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/phong/pkg/models"
	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/scene"
)

var (
	configPath = flag.String("config", "", "Path to a YAML scene file")
	targetFPS  = flag.Int("fps", 30, "Target FPS")
	bgColor    = flag.String("bg", "", "Background color (R,G,B), overrides the scene")
	workers    = flag.Int("workers", -1, "Triangle shading goroutines, overrides the scene when >= 0")
	wireframe  = flag.Bool("wireframe", false, "Start with the wireframe overlay")
	normals    = flag.Bool("normals", false, "Start with vertex normals drawn")
	pngPath    = flag.String("png", "", "Render one frame to this PNG file and exit")
	exportPath = flag.String("export", "", "Write the scene mesh to this .glb file and exit")
	size       = flag.String("size", "", "Headless frame size WxH, overrides the scene")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "phong - Terminal Phong-shaded cylinder\n\n")
		fmt.Fprintf(os.Stderr, "Usage: phong [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Space       - Pause/resume light orbit\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  N           - Toggle normals\n")
		fmt.Fprintf(os.Stderr, "  L           - Toggle light marker\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadScene() (*scene.Scene, error) {
	cfg := scene.Default()
	if *configPath != "" {
		var err error
		cfg, err = scene.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *bgColor != "" {
		var r, g, b float64
		if _, err := fmt.Sscanf(*bgColor, "%g,%g,%g", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("parse -bg %q: %w", *bgColor, err)
		}
		cfg.Render.Background = [3]float64{r, g, b}
	}
	if *workers >= 0 {
		cfg.Render.Workers = *workers
	}
	if *size != "" {
		var w, h int
		if _, err := fmt.Sscanf(strings.ToLower(*size), "%dx%d", &w, &h); err != nil {
			return nil, fmt.Errorf("parse -size %q: %w", *size, err)
		}
		cfg.Render.Width, cfg.Render.Height = w, h
	}

	s, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	s.Options.Wireframe = *wireframe
	s.Options.Normals = *normals
	return s, nil
}

func run() error {
	s, err := loadScene()
	if err != nil {
		return err
	}

	switch {
	case *exportPath != "":
		if err := models.SaveGLB(s.Mesh, *exportPath); err != nil {
			return fmt.Errorf("export mesh: %w", err)
		}
		fmt.Printf("Wrote %s (%d vertices, %d triangles)\n", *exportPath, s.Mesh.VertexCount(), s.Mesh.TriangleCount())
		return nil
	case *pngPath != "":
		return renderPNG(s, *pngPath)
	}

	return runTerminal(s)
}

// renderPNG draws a single frame at the scene's resolution.
func renderPNG(s *scene.Scene, path string) error {
	fb := render.NewFramebuffer(s.Width, s.Height)
	fb.Clear(s.Background)
	r := render.NewRenderer(fb, s.Options)
	stats := r.Render(s.Mesh, s.State, s.Material)

	if err := fb.SavePNG(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d of %d triangles drawn, %d samples)\n", path, stats.Drawn, stats.Triangles, stats.Samples)
	return nil
}

// OrbitSpeed eases the light orbit between running and paused with a
// critically damped spring.
type OrbitSpeed struct {
	Speed    float64
	Target   float64
	spring   harmonica.Spring
	velocity float64
}

// NewOrbitSpeed creates a running orbit speed.
func NewOrbitSpeed(fps int) OrbitSpeed {
	return OrbitSpeed{
		Speed:  1,
		Target: 1,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}


// Update moves Speed one frame closer to Target.
func (o *OrbitSpeed) Update() {
	o.Speed, o.velocity = o.spring.Update(o.Speed, o.velocity, o.Target)
}

// HUD draws frame statistics into the framebuffer.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render writes the HUD lines at the top left of fb.
func (h *HUD) Render(fb *render.Framebuffer, stats render.FrameStats, orbit render.LightOrbit, speed float64) {
	lines := []string{
		fmt.Sprintf("%.0f FPS", h.fps),
		fmt.Sprintf("%d/%d tris", stats.Drawn, stats.Triangles),
		fmt.Sprintf("light %.0f deg", orbit.Angle*180/math.Pi),
	}
	if speed < 0.01 {
		lines = append(lines, "paused")
	}

	y := 1
	for _, line := range lines {
		_, lh := render.TextSize(line)
		render.DrawText(fb, 1, y, line, render.ColorWhite)
		y += lh
	}
}

func runTerminal(s *scene.Scene) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	presenter := render.NewTerminalPresenter(term)
	// Each cell shows two framebuffer rows.
	fb := render.NewFramebuffer(width, height*2)
	renderer := render.NewRenderer(fb, s.Options)

	speed := NewOrbitSpeed(*targetFPS)
	hud := NewHUD()
	controls := scene.NewControls(s.Options)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Events are applied between frames.
	events := make(chan uv.Event, 16)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(max(*targetFPS, 1))

	for {
		now := time.Now()

	drain:
		for {
			select {
			case <-ctx.Done():
				cleanup()
				return nil
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					fb.Resize(width, height*2)
					renderer.Resize()
				case uv.KeyPressEvent:
					if ev.MatchString("ctrl+c") {
						cleanup()
						return nil
					}
					key := ""
					for _, k := range scene.Keys {
						if ev.MatchString(k) {
							key = k
							break
						}
					}
					if ev.MatchString("shift+/") {
						key = scene.KeyHUD
					}
					if controls.Press(key) {
						cleanup()
						return nil
					}
				}
			default:
				break drain
			}
		}

		speed.Target = controls.Speed()
		speed.Update()
		state := s.Tick(speed.Speed)
		controls.Apply(&renderer.Options)

		fb.Clear(s.Background)
		stats := renderer.Render(s.Mesh, state, s.Material)

		hud.UpdateFPS()
		if controls.HUD {
			hud.Render(fb, stats, s.Orbit, speed.Speed)
		}

		if err := presenter.Present(fb); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
