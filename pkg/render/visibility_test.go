package render

import (
	"testing"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
)

func TestFrontFacing(t *testing.T) {
	eye := math3d.V3(0, 0, -150)

	tests := []struct {
		name   string
		pos    math3d.Vec3
		normal math3d.Vec3
		want   bool
	}{
		{"faces camera", math3d.V3(0, 0, -40), math3d.V3(0, 0, -1), true},
		{"faces away", math3d.V3(0, 0, 40), math3d.V3(0, 0, 1), false},
		{"edge on", math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), false},
		{"oblique toward", math3d.V3(40, 0, 0), math3d.V3(0.2, 0, -0.98), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FrontFacing(tc.pos, tc.normal, eye); got != tc.want {
				t.Errorf("FrontFacing = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVisiblePolicies(t *testing.T) {
	eye := math3d.V3(0, 0, -150)
	toward := math3d.V3(0, 0, -1)
	away := math3d.V3(0, 0, 1)
	tri := func(n0, n1, n2 math3d.Vec3) [3]models.Vertex {
		return [3]models.Vertex{
			{Position: math3d.V3(0, 0, 0), Normal: n0},
			{Position: math3d.V3(10, 0, 0), Normal: n1},
			{Position: math3d.V3(0, 10, 0), Normal: n2},
		}
	}

	tests := []struct {
		name    string
		tri     [3]models.Vertex
		wantAny bool
		wantAll bool
	}{
		{"all toward", tri(toward, toward, toward), true, true},
		{"one toward", tri(away, toward, away), true, false},
		{"all away", tri(away, away, away), false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Visible(tc.tri, eye, VisibleAnyVertex); got != tc.wantAny {
				t.Errorf("any: got %v, want %v", got, tc.wantAny)
			}
			if got := Visible(tc.tri, eye, VisibleAllVertices); got != tc.wantAll {
				t.Errorf("all: got %v, want %v", got, tc.wantAll)
			}
		})
	}
}

func TestParseVisibilityPolicy(t *testing.T) {
	for _, p := range []VisibilityPolicy{VisibleAnyVertex, VisibleAllVertices} {
		got, err := ParseVisibilityPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseVisibilityPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParseVisibilityPolicy(""); err != nil || got != VisibleAnyVertex {
		t.Errorf("empty policy = %v, %v; want any", got, err)
	}
	if _, err := ParseVisibilityPolicy("most"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
