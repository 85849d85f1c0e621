package render

import (
	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
)

// Vertex is a mesh vertex together with its projection for one frame.
// Screen holds pixel x, pixel y and the reciprocal camera depth 1/z, which
// grows toward the viewer and interpolates linearly across the screen.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Screen   math3d.Vec3
}

// Projector maps world points to the viewport for one camera pose. It is
// built once per frame and is safe for concurrent use.
type Projector struct {
	view     math3d.Mat4
	viewProj math3d.Mat4
	inverse  math3d.Mat4 // camera to world
	aspect   float64     // height / width
	width    float64
	height   float64
}

// NewProjector captures the camera pose and viewport size.
func NewProjector(cam Camera, width, height int) Projector {
	w, h := float64(width), float64(height)
	d := h / w
	view := cam.ViewMatrix()
	inverse, _ := view.Inverse() // rigid transforms always invert
	return Projector{
		view:     view,
		viewProj: math3d.Projection(d).Mul(view),
		inverse:  inverse,
		aspect:   d,
		width:    w,
		height:   h,
	}
}

// Project maps a world point to (pixel x, pixel y, 1/z). ok is false when
// the point is not in front of the camera (z ≤ 0); no coordinates are
// produced for such points.
func (p Projector) Project(world math3d.Vec3) (screen math3d.Vec3, ok bool) {
	clip := p.viewProj.MulVec4(math3d.Point(world))
	if !(clip.W > 0) {
		return math3d.Vec3{}, false
	}
	ndc := clip.PerspectiveDivide()
	screen = math3d.V3(
		p.width/2*(1+ndc.X),
		p.height/2*(1-ndc.Y),
		ndc.Z,
	)
	if !screen.IsFinite() {
		return math3d.Vec3{}, false
	}
	return screen, true
}

// ProjectVertex projects a mesh vertex, carrying its attributes along.
func (p Projector) ProjectVertex(v models.Vertex) (Vertex, bool) {
	screen, ok := p.Project(v.Position)
	if !ok {
		return Vertex{}, false
	}
	return Vertex{Position: v.Position, Normal: v.Normal, Screen: screen}, true
}

// ProjectTriangle projects all three vertices. ok is false when any of
// them cannot be projected.
func (p Projector) ProjectTriangle(tri [3]models.Vertex) (out [3]Vertex, ok bool) {
	for i, v := range tri {
		if out[i], ok = p.ProjectVertex(v); !ok {
			return out, false
		}
	}
	return out, true
}

// Unproject inverts Project: given pixel coordinates and a reciprocal
// depth it returns the world point. ok is false for depth ≤ 0.
func (p Projector) Unproject(screen math3d.Vec3) (math3d.Vec3, bool) {
	if !(screen.Z > 0) {
		return math3d.Vec3{}, false
	}
	z := 1 / screen.Z
	ndcX := 2*screen.X/p.width - 1
	ndcY := 1 - 2*screen.Y/p.height
	cam := math3d.V3(ndcX*z/p.aspect, ndcY*z, z)
	return p.inverse.MulPoint(cam), true
}

// ToCamera transforms a world point into camera space.
func (p Projector) ToCamera(world math3d.Vec3) math3d.Vec3 {
	return p.view.MulPoint(world)
}

// Frustum returns the view volume bounded by the four screen edges and
// the camera plane.
func (p Projector) Frustum() Frustum {
	return NewFrustumFromMatrix(p.viewProj)
}
