// Package scene loads the description of what to draw: the cylinder, the
// camera, the orbiting light, the material and the renderer settings.
package scene

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
	"github.com/taigrr/phong/pkg/render"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid scene config")

// Config is a scene file. Vectors are written as [x, y, z] and colors use
// the 0-255 channel scale.
type Config struct {
	Cylinder Cylinder `yaml:"cylinder"`
	Camera   Camera   `yaml:"camera"`
	Light    Light    `yaml:"light"`
	Material Material `yaml:"material"`
	Render   Render   `yaml:"render"`
}

// Cylinder is the tessellated solid. When Mesh names a glTF file it is
// drawn instead.
type Cylinder struct {
	Radius    float64    `yaml:"radius"`
	Height    float64    `yaml:"height"`
	Base      [3]float64 `yaml:"base"`
	Divisions int        `yaml:"divisions"`
	Mesh      string     `yaml:"mesh,omitempty"`
}

// Camera places the viewer. Rotation is in degrees about X, Y and Z.
type Camera struct {
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"`
}

// Light is the point light and its optional orbit.
type Light struct {
	Position  [3]float64 `yaml:"position"`
	Intensity [3]float64 `yaml:"intensity"`
	Ambient   [3]float64 `yaml:"ambient"`
	Orbit     Orbit      `yaml:"orbit"`
}

// Orbit moves the light around the vertical axis by Step radians per tick.
// Radius and height are taken from the light position when zero.
type Orbit struct {
	Enabled bool    `yaml:"enabled"`
	Radius  float64 `yaml:"radius,omitempty"`
	Height  float64 `yaml:"height,omitempty"`
	Step    float64 `yaml:"step"`
}

// Material is the Phong surface. Reflectivities are in [0, 1].
type Material struct {
	Diffuse  [3]float64 `yaml:"diffuse"`
	Specular [3]float64 `yaml:"specular"`
	Exponent float64    `yaml:"exponent"`
}

// Render is the frame size and renderer settings. A zero Workers renders
// on one goroutine.
type Render struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Visibility string     `yaml:"visibility"`
	DepthTest  bool       `yaml:"depth_test"`
	Workers    int        `yaml:"workers"`
	Background [3]float64 `yaml:"background"`
}

// Default returns the reference scene: a 40 by 70 cylinder centered on the
// origin, seen from 150 units down -Z with a white light above and behind
// the viewer's side of the cylinder.
func Default() Config {
	return Config{
		Cylinder: Cylinder{
			Radius:    40,
			Height:    70,
			Base:      [3]float64{0, -35, 0},
			Divisions: 34,
		},
		Camera: Camera{
			Position: [3]float64{0, 0, -150},
		},
		Light: Light{
			Position:  [3]float64{0, 50, 100},
			Intensity: [3]float64{255, 255, 255},
			Ambient:   [3]float64{40, 40, 40},
			Orbit:     Orbit{Enabled: true, Step: 0.05},
		},
		Material: Material{
			Diffuse:  [3]float64{1, 1, 1},
			Specular: [3]float64{1, 1, 1},
			Exponent: 100,
		},
		Render: Render{
			Width:      200,
			Height:     150,
			Visibility: render.VisibleAnyVertex.String(),
			DepthTest:  true,
			Background: [3]float64{0, 0, 0},
		},
	}
}

// Load reads a scene file. Fields missing from the file keep their
// Default values; unknown fields are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a scene document over the defaults and validates it.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode scene: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the renderer cannot recover from. Cylinder
// geometry is left to models.NewCylinder.
func (c Config) Validate() error {
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("render size %dx%d is negative: %w", c.Render.Width, c.Render.Height, ErrInvalidConfig)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("render workers %d is negative: %w", c.Render.Workers, ErrInvalidConfig)
	}
	if _, err := render.ParseVisibilityPolicy(c.Render.Visibility); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	if !vec(c.Camera.Position).IsFinite() || !vec(c.Camera.Rotation).IsFinite() {
		return fmt.Errorf("camera is not finite: %w", ErrInvalidConfig)
	}
	if !vec(c.Light.Position).IsFinite() {
		return fmt.Errorf("light position is not finite: %w", ErrInvalidConfig)
	}
	colors := []struct {
		name string
		v    [3]float64
	}{
		{"light intensity", c.Light.Intensity},
		{"light ambient", c.Light.Ambient},
		{"render background", c.Render.Background},
	}
	for _, col := range colors {
		if !inRange(col.v, 0, 255) {
			return fmt.Errorf("%s %v is outside [0, 255]: %w", col.name, col.v, ErrInvalidConfig)
		}
	}
	if !inRange(c.Material.Diffuse, 0, 1) || !inRange(c.Material.Specular, 0, 1) {
		return fmt.Errorf("material reflectivity is outside [0, 1]: %w", ErrInvalidConfig)
	}
	if !math3d.IsFinite(c.Material.Exponent) || c.Material.Exponent < 0 {
		return fmt.Errorf("material exponent %g must be a non-negative number: %w", c.Material.Exponent, ErrInvalidConfig)
	}
	if !math3d.IsFinite(c.Light.Orbit.Step) || !math3d.IsFinite(c.Light.Orbit.Radius) || !math3d.IsFinite(c.Light.Orbit.Height) {
		return fmt.Errorf("light orbit is not finite: %w", ErrInvalidConfig)
	}
	return nil
}

// Scene is a Config assembled into renderer inputs.
type Scene struct {
	Mesh       *models.Mesh
	State      render.FrameState
	Material   render.Material
	Options    render.Options
	Orbit      render.LightOrbit
	OrbitStep  float64 // radians per tick, zero when the orbit is disabled
	Background render.Color
	Width      int
	Height     int
}

// Build creates the mesh and renderer inputs described by c.
func (c Config) Build() (*Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mesh, err := c.mesh()
	if err != nil {
		return nil, err
	}

	policy, _ := render.ParseVisibilityPolicy(c.Render.Visibility)
	light := render.LightSource{
		Position:  vec(c.Light.Position),
		Intensity: vec(c.Light.Intensity),
		Ambient:   vec(c.Light.Ambient),
	}

	s := &Scene{
		Mesh: mesh,
		State: render.FrameState{
			Camera: render.NewCamera(vec(c.Camera.Position), vec(c.Camera.Rotation)),
			Light:  light,
		},
		Material: render.Material{
			Diffuse:  vec(c.Material.Diffuse),
			Specular: vec(c.Material.Specular),
			Exponent: c.Material.Exponent,
		},
		Options: render.Options{
			Visibility:       policy,
			DisableDepthTest: !c.Render.DepthTest,
			Workers:          c.Render.Workers,
		},
		Background: render.ToRGBA(vec(c.Render.Background)),
		Width:      c.Render.Width,
		Height:     c.Render.Height,
	}

	if c.Light.Orbit.Enabled {
		s.Orbit = orbitThrough(light.Position, c.Light.Orbit)
		s.OrbitStep = c.Light.Orbit.Step
		s.State.Light.Position = s.Orbit.Position()
	}
	return s, nil
}

// Tick advances the orbiting light by one step scaled by speed and
// returns the frame state to draw.
func (s *Scene) Tick(speed float64) render.FrameState {
	if s.OrbitStep != 0 {
		s.Orbit.Advance(s.OrbitStep * speed)
		s.State.Light.Position = s.Orbit.Position()
	}
	return s.State
}

func (c Config) mesh() (*models.Mesh, error) {
	if c.Cylinder.Mesh != "" {
		mesh, err := models.LoadGLB(c.Cylinder.Mesh)
		if err != nil {
			return nil, fmt.Errorf("load mesh: %w", err)
		}
		return mesh, nil
	}
	return models.NewCylinder(models.CylinderSpec{
		Radius:    c.Cylinder.Radius,
		Height:    c.Cylinder.Height,
		Base:      vec(c.Cylinder.Base),
		Divisions: c.Cylinder.Divisions,
	})
}

// orbitThrough returns an orbit that passes through pos unless the config
// overrides its radius or height.
func orbitThrough(pos math3d.Vec3, o Orbit) render.LightOrbit {
	orbit := render.LightOrbit{
		Radius: math.Hypot(pos.X, pos.Z),
		Height: pos.Y,
		Angle:  math.Atan2(pos.X, pos.Z),
	}
	if o.Radius != 0 {
		orbit.Radius = o.Radius
	}
	if o.Height != 0 {
		orbit.Height = o.Height
	}
	orbit.Advance(0)
	return orbit
}

func vec(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func inRange(v [3]float64, lo, hi float64) bool {
	for _, c := range v {
		if !math3d.IsFinite(c) || c < lo || c > hi {
			return false
		}
	}
	return true
}
