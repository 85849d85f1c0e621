package render

import (
	"image/color"
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// LightSource is a point light. Colors use the 0-255 channel scale.
type LightSource struct {
	Position  math3d.Vec3
	Intensity math3d.Vec3 // color of the light, e.g. (255, 255, 255)
	Ambient   math3d.Vec3 // color added to every shaded point
}

// Material describes how a surface reflects light.
type Material struct {
	Diffuse  math3d.Vec3 // per-channel diffuse reflectivity in [0, 1]
	Specular math3d.Vec3 // per-channel specular reflectivity in [0, 1]
	Exponent float64     // specular exponent, higher is a tighter highlight
}

// DefaultMaterial is a white surface with a tight highlight.
func DefaultMaterial() Material {
	return Material{
		Diffuse:  math3d.Splat(1),
		Specular: math3d.Splat(1),
		Exponent: 100,
	}
}

// Shader evaluates the Phong reflection model for one light, one material
// and one viewer. It holds values only and is safe for concurrent use.
type Shader struct {
	Light    LightSource
	Material Material
	Eye      math3d.Vec3
}

// Shade returns the lit color at position with unit normal n, on the 0-255
// scale with every channel clamped independently.
//
// The color starts at the ambient term. When the light is in front of the
// surface the diffuse term intensity⊙diffuse·(n·L) is added, and when the
// reflected light direction R = 2(n·L)n - L also points toward the viewer
// the specular term intensity⊙specular·(R·V)^exponent is added.
func (s Shader) Shade(position, n math3d.Vec3) math3d.Vec3 {
	c := s.Light.Ambient

	l := s.Light.Position.Sub(position).Normalize()
	diff := n.Dot(l)
	if diff > 0 {
		c = c.Add(s.Light.Intensity.Mul(s.Material.Diffuse).Scale(diff))

		r := n.Scale(2 * diff).Sub(l)
		v := s.Eye.Sub(position).Normalize()
		if spec := r.Dot(v); spec > 0 {
			c = c.Add(s.Light.Intensity.Mul(s.Material.Specular).Scale(math.Pow(spec, s.Material.Exponent)))
		}
	}

	return c.Clamp(0, 255)
}

// ShadeRGBA is Shade converted to an opaque color.
func (s Shader) ShadeRGBA(position, n math3d.Vec3) color.RGBA {
	return ToRGBA(s.Shade(position, n))
}

// ToRGBA converts a 0-255 scale color to color.RGBA, rounding to the
// nearest channel value.
func ToRGBA(c math3d.Vec3) color.RGBA {
	c = c.Clamp(0, 255)
	return color.RGBA{
		R: uint8(math.Round(c.X)),
		G: uint8(math.Round(c.Y)),
		B: uint8(math.Round(c.Z)),
		A: 255,
	}
}

// LightOrbit moves a light around the vertical axis at a fixed height.
type LightOrbit struct {
	Radius float64
	Height float64
	Angle  float64 // radians; angle 0 is on the +Z axis
}

// Position returns the light position for the current angle.
func (o LightOrbit) Position() math3d.Vec3 {
	sin, cos := math.Sincos(o.Angle)
	return math3d.V3(o.Radius*sin, o.Height, o.Radius*cos)
}

// Advance rotates the orbit by step radians, wrapping to [0, 2π).
func (o *LightOrbit) Advance(step float64) {
	o.Angle = math.Mod(o.Angle+step, 2*math.Pi)
	if o.Angle < 0 {
		o.Angle += 2 * math.Pi
	}
}
