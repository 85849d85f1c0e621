// Package models provides the triangle mesh representation, the cylinder
// tessellator and glTF import/export for the phong renderer.
package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// ErrInvalidGeometry is returned when mesh parameters or mesh data cannot
// describe a renderable solid.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Mesh is an indexed triangle mesh. It is built once and treated as
// immutable while frames are rendered from it.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Triangles []Triangle

	// Bounding box (calculated on build or load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Vertex holds the model-space attributes of a mesh vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3 // unit length
}

// Triangle references three vertices of its mesh. Winding carries no
// meaning; visibility is decided from vertex normals.
type Triangle struct {
	V [3]int // Indices into Mesh.Vertices
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(position, normal math3d.Vec3) int {
	m.Vertices = append(m.Vertices, Vertex{Position: position, Normal: normal})
	return len(m.Vertices) - 1
}

// AddTriangle appends a triangle over existing vertex indices.
func (m *Mesh) AddTriangle(a, b, c int) {
	m.Triangles = append(m.Triangles, Triangle{V: [3]int{a, b, c}})
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleVertices returns copies of the three vertices of triangle i.
func (m *Mesh) TriangleVertices(i int) [3]Vertex {
	t := m.Triangles[i]
	return [3]Vertex{m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]}
}

// CalculateSmoothNormals replaces every vertex normal with the normalized
// sum of the area-weighted normals of the triangles that use it.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for _, t := range m.Triangles {
		p0 := m.Vertices[t.V[0]].Position
		p1 := m.Vertices[t.V[1]].Position
		p2 := m.Vertices[t.V[2]].Position
		// Unnormalized cross product weights by area.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range t.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies an affine matrix to positions and its rotational part
// to normals. Bounds are recomputed.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulPoint(v.Position)
		v.Normal = mat.MulDir(v.Normal).Normalize()
	}
	m.CalculateBounds()
}

// Validate checks that every triangle references existing vertices and
// that every vertex is finite with a unit normal.
func (m *Mesh) Validate() error {
	if len(m.Triangles) == 0 {
		return fmt.Errorf("mesh %q has no triangles: %w", m.Name, ErrInvalidGeometry)
	}
	for i, t := range m.Triangles {
		for _, idx := range t.V {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("triangle %d references vertex %d of %d: %w",
					i, idx, len(m.Vertices), ErrInvalidGeometry)
			}
		}
	}
	for i, v := range m.Vertices {
		if !v.Position.IsFinite() || !v.Normal.IsFinite() {
			return fmt.Errorf("vertex %d is not finite: %w", i, ErrInvalidGeometry)
		}
		if math.Abs(v.Normal.Len()-1) > 1e-5 {
			return fmt.Errorf("vertex %d normal has length %g: %w", i, v.Normal.Len(), ErrInvalidGeometry)
		}
	}
	return nil
}
