package models

import (
	"fmt"
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// CylinderSpec describes an upright cylinder standing on Base.
type CylinderSpec struct {
	Radius    float64
	Height    float64
	Base      math3d.Vec3 // center of the bottom cap
	Divisions int         // rim vertices per ring, at least 3
}

// Validate reports parameters that cannot describe a closed cylinder.
func (s CylinderSpec) Validate() error {
	switch {
	case s.Divisions < 3:
		return fmt.Errorf("cylinder needs at least 3 divisions, got %d: %w", s.Divisions, ErrInvalidGeometry)
	case !math3d.IsFinite(s.Radius) || s.Radius <= 0:
		return fmt.Errorf("cylinder radius must be positive, got %g: %w", s.Radius, ErrInvalidGeometry)
	case !math3d.IsFinite(s.Height) || s.Height <= 0:
		return fmt.Errorf("cylinder height must be positive, got %g: %w", s.Height, ErrInvalidGeometry)
	case !s.Base.IsFinite():
		return fmt.Errorf("cylinder base %v is not finite: %w", s.Base, ErrInvalidGeometry)
	}
	return nil
}

// NewCylinder tessellates a closed cylinder into 4·Divisions triangles:
// the bottom cap fan, then the top cap fan, then the side band, each in
// increasing rim order.
//
// Side vertices carry the outward radial normal and cap vertices the axial
// normal, so rim positions appear twice with different normals. Vertices
// are stored as the bottom side ring, bottom cap rim, top cap rim, top side
// ring, then the two cap centers.
func NewCylinder(s CylinderSpec) (*Mesh, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	n := s.Divisions
	down := math3d.V3(0, -1, 0)
	up := math3d.V3(0, 1, 0)
	top := s.Base.Add(math3d.V3(0, s.Height, 0))

	m := NewMesh("cylinder")
	m.Vertices = make([]Vertex, 0, 4*n+2)
	m.Triangles = make([]Triangle, 0, 4*n)

	// Rim angles accumulate by a fixed step starting at the +Z axis.
	rims := make([]math3d.Vec3, n)
	step := 2 * math.Pi / float64(n)
	angle := 0.0
	for i := range n {
		sin, cos := math.Sincos(angle)
		rims[i] = math3d.V3(-sin*s.Radius, 0, cos*s.Radius)
		angle += step
	}

	bottomSide := ring(m, rims, s.Base, true, down)
	bottomCap := ring(m, rims, s.Base, false, down)
	topCap := ring(m, rims, top, false, up)
	topSide := ring(m, rims, top, true, up)
	bottomCenter := m.AddVertex(s.Base, down)
	topCenter := m.AddVertex(top, up)

	for i := range n {
		m.AddTriangle(bottomCap+i, bottomCap+(i+1)%n, bottomCenter)
	}
	for i := range n {
		m.AddTriangle(topCap+i, topCap+(i+1)%n, topCenter)
	}
	for i := range n {
		j := (i + 1) % n
		m.AddTriangle(topSide+i, bottomSide+i, topSide+j)
		m.AddTriangle(bottomSide+i, bottomSide+j, topSide+j)
	}

	m.CalculateBounds()
	return m, nil
}

// ring appends one vertex per rim offset around center and returns the
// index of the first. Side rings use the radial direction as the normal;
// cap rings use capNormal.
func ring(m *Mesh, rims []math3d.Vec3, center math3d.Vec3, side bool, capNormal math3d.Vec3) int {
	first := len(m.Vertices)
	for _, r := range rims {
		normal := capNormal
		if side {
			normal = r.Normalize()
		}
		m.AddVertex(center.Add(r), normal)
	}
	return first
}
