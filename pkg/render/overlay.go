package render

import (
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// normalLength is the world-space length of drawn normal segments.
const normalLength = 10

// Overlay colors.
var (
	WireColor   = ColorGray
	NormalColor = ColorCyan
)

func (r *Renderer) drawOverlays(f *frame, light LightSource) {
	if r.Options.Wireframe {
		for _, tri := range r.drawn {
			DrawTriangleEdges(r.fb, tri, WireColor)
		}
	}
	if r.Options.Normals {
		for _, tri := range r.drawn {
			for _, v := range tri {
				DrawNormal(r.fb, f.proj, v, NormalColor)
			}
		}
	}
	if r.Options.LightMarker {
		DrawLine3D(r.fb, f.proj, light.Position, f.mesh.Center(), WireColor)
		DrawLightMarker(r.fb, f.proj, light)
	}
}

// DrawTriangleEdges strokes the three projected edges of tri.
func DrawTriangleEdges(fb *Framebuffer, tri [3]Vertex, c Color) {
	for i := range 3 {
		a, b := tri[i].Screen, tri[(i+1)%3].Screen
		fb.DrawLine(pixel(a.X), pixel(a.Y), pixel(b.X), pixel(b.Y), c)
	}
}

// DrawNormal strokes the segment from a vertex along its normal. Nothing
// is drawn when the tip is behind the camera.
func DrawNormal(fb *Framebuffer, proj Projector, v Vertex, c Color) {
	tip, ok := proj.Project(v.Position.Add(v.Normal.Scale(normalLength)))
	if !ok {
		return
	}
	fb.DrawLine(pixel(v.Screen.X), pixel(v.Screen.Y), pixel(tip.X), pixel(tip.Y), c)
}

// DrawLine3D strokes a world-space segment. Segments with an endpoint
// behind the camera are skipped.
func DrawLine3D(fb *Framebuffer, proj Projector, a, b math3d.Vec3, c Color) {
	pa, ok := proj.Project(a)
	if !ok {
		return
	}
	pb, ok := proj.Project(b)
	if !ok {
		return
	}
	fb.DrawLine(pixel(pa.X), pixel(pa.Y), pixel(pb.X), pixel(pb.Y), c)
}

// DrawLightMarker draws the light as a disc in its own color, sized by
// distance.
func DrawLightMarker(fb *Framebuffer, proj Projector, light LightSource) {
	p, ok := proj.Project(light.Position)
	if !ok {
		return
	}
	// p.Z is 1/z, so the radius shrinks with distance.
	radius := int(math.Max(1, math.Min(8, 300*p.Z)))
	fb.FillCircle(pixel(p.X), pixel(p.Y), radius+1, ColorBlack)
	fb.FillCircle(pixel(p.X), pixel(p.Y), radius, ToRGBA(light.Intensity))
}

// pixel converts a screen coordinate to the containing pixel, saturating
// far-off values so line drawing stays bounded.
func pixel(v float64) int {
	const limit = 1 << 16
	return int(math.Floor(math.Max(-limit, math.Min(limit, v))))
}
