package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/phong/pkg/math3d"
)

// GLTFLoader loads triangle geometry from glTF/GLB files.
type GLTFLoader struct {
	// SmoothNormals computes averaged vertex normals when the file has
	// none. Without it such files are rejected.
	SmoothNormals bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{SmoothNormals: true}
}

// LoadGLB loads a glTF or GLB file with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load merges every triangle primitive of the document into one mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	missingNormals := false
	for _, m := range doc.Meshes {
		hasNormals, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		missingNormals = missingNormals || !hasNormals
	}

	if missingNormals {
		if !l.SmoothNormals {
			return nil, fmt.Errorf("%s has primitives without normals: %w", path, ErrInvalidGeometry)
		}
		mesh.CalculateSmoothNormals()
	}

	mesh.CalculateBounds()
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh and reports
// whether all of them carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points have no surface to shade.
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		}
		if len(normals) != len(positions) {
			normals = nil
			hasNormals = false
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := Vertex{Position: vec3(p)}
			if normals != nil {
				v.Normal = vec3(normals[i]).Normalize()
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			mesh.AddTriangle(base+int(indices[i]), base+int(indices[i+1]), base+int(indices[i+2]))
		}
	}
	return hasNormals, nil
}

// SaveGLB writes mesh as a single-primitive binary glTF with positions,
// normals and 32-bit indices.
func SaveGLB(mesh *Mesh, path string) error {
	if len(mesh.Triangles) == 0 {
		return fmt.Errorf("mesh %q has no triangles: %w", mesh.Name, ErrInvalidGeometry)
	}

	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = float3(v.Position)
		normals[i] = float3(v.Normal)
	}
	indices := make([]uint32, 0, 3*len(mesh.Triangles))
	for _, t := range mesh.Triangles {
		indices = append(indices, uint32(t.V[0]), uint32(t.V[1]), uint32(t.V[2]))
	}

	doc := gltf.NewDocument()
	posIdx := modeler.WritePosition(doc, positions)
	nIdx := modeler.WriteNormal(doc, normals)
	iIdx := modeler.WriteIndices(doc, indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: mesh.Name,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(iIdx),
			Attributes: map[string]int{
				gltf.POSITION: posIdx,
				gltf.NORMAL:   nIdx,
			},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}

func float3(v math3d.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
