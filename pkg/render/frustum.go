package render

import (
	"github.com/taigrr/phong/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive is on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the view volume. The projection has no far plane, so the
// volume is bounded by the four screen edges and the plane through the
// camera. Every normal points inward.
type Frustum struct {
	Planes [5]Plane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
)

// NewFrustumFromMatrix extracts the frustum planes from a view-projection
// matrix with the Gribb/Hartmann method: each plane is the clip-space W
// row plus or minus another row.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	x, y, w := m.Row(0), m.Row(1), m.Row(3)
	rows := [5]math3d.Vec4{
		FrustumLeft:   w.Add(x),
		FrustumRight:  w.Sub(x),
		FrustumBottom: w.Add(y),
		FrustumTop:    w.Sub(y),
		FrustumNear:   w,
	}

	var f Frustum
	for i, r := range rows {
		f.Planes[i] = Plane{Normal: r.XYZ(), D: r.W}
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max corners.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// ContainsPoint reports whether p is inside the box.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectAABB reports whether any part of box may be inside the
// frustum. It tests the corner furthest along each plane normal, so it
// can return true for boxes near a frustum corner that are actually
// outside; it never returns false for a visible box.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		positive := math3d.V3(
			pick(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(positive) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
