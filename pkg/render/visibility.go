package render

import (
	"fmt"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
)

// VisibilityPolicy selects how many front-facing vertices a triangle needs
// before it is rasterized.
type VisibilityPolicy int

const (
	// VisibleAnyVertex keeps a triangle when at least one vertex faces
	// the camera. Triangles on the silhouette are drawn whole.
	VisibleAnyVertex VisibilityPolicy = iota
	// VisibleAllVertices keeps a triangle only when every vertex faces
	// the camera.
	VisibleAllVertices
)

// String returns the policy name used in configuration files.
func (p VisibilityPolicy) String() string {
	switch p {
	case VisibleAnyVertex:
		return "any"
	case VisibleAllVertices:
		return "all"
	default:
		return fmt.Sprintf("VisibilityPolicy(%d)", int(p))
	}
}

// ParseVisibilityPolicy converts a configuration name to a policy.
func ParseVisibilityPolicy(s string) (VisibilityPolicy, error) {
	switch s {
	case "", "any":
		return VisibleAnyVertex, nil
	case "all":
		return VisibleAllVertices, nil
	default:
		return 0, fmt.Errorf("unknown visibility policy %q (want any or all)", s)
	}
}

// FrontFacing reports whether a surface point with normal n at position
// faces eye.
func FrontFacing(position, normal, eye math3d.Vec3) bool {
	return eye.Sub(position).Normalize().Dot(normal) > 0
}

// Visible applies policy to the three vertices of a triangle.
func Visible(tri [3]models.Vertex, eye math3d.Vec3, policy VisibilityPolicy) bool {
	facing := 0
	for _, v := range tri {
		if FrontFacing(v.Position, v.Normal, eye) {
			facing++
		}
	}
	if policy == VisibleAllVertices {
		return facing == 3
	}
	return facing > 0
}
