package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestRotationsAreRightHanded(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"X turns Y into Z", RotateX(math.Pi / 2), V3(0, 1, 0), V3(0, 0, 1)},
		{"Y turns Z into X", RotateY(math.Pi / 2), V3(0, 0, 1), V3(1, 0, 0)},
		{"Z turns X into Y", RotateZ(math.Pi / 2), V3(1, 0, 0), V3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.MulDir(tt.in)
			if !got.ApproxEqual(tt.want, eps) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateMovesPointsNotDirections(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	if got := m.MulPoint(V3(1, 1, 1)); !got.ApproxEqual(V3(2, 3, 4), eps) {
		t.Errorf("MulPoint = %v, want (2, 3, 4)", got)
	}
	if got := m.MulDir(V3(1, 1, 1)); !got.ApproxEqual(V3(1, 1, 1), eps) {
		t.Errorf("MulDir = %v, want (1, 1, 1)", got)
	}
}

func TestProjectionDivide(t *testing.T) {
	p := Projection(0.5)
	clip := p.MulVec4(V4(4, 6, 2, 1))
	if clip != V4(2, 6, 1, 2) {
		t.Fatalf("clip = %v, want (2, 6, 1, 2)", clip)
	}
	ndc := clip.PerspectiveDivide()
	if !ndc.ApproxEqual(V3(1, 3, 0.5), eps) {
		t.Errorf("ndc = %v, want (1, 3, 0.5)", ndc)
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translation", Translate(V3(-4, 7, 12))},
		{"rigid", RotateX(0.3).Mul(RotateY(-1.1)).Mul(RotateZ(2)).Mul(Translate(V3(0, 80, -150)))},
		{"projection", Projection(0.75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("matrix reported singular")
			}
			if got := tt.m.Mul(inv); !got.ApproxEqual(Identity(), eps) {
				t.Errorf("m·inv = %v, want identity", got)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if _, ok := zero.Inverse(); ok {
		t.Error("zero matrix should not be invertible")
	}
}

func TestTransposeOfRotationIsInverse(t *testing.T) {
	r := RotateX(0.4).Mul(RotateY(1.3))
	if got := r.Mul(r.Transpose()); !got.ApproxEqual(Identity(), eps) {
		t.Errorf("r·rᵀ = %v, want identity", got)
	}
}

func TestVec3Helpers(t *testing.T) {
	if got := V3(3, 0, 4).Normalize(); !got.ApproxEqual(V3(0.6, 0, 0.8), eps) {
		t.Errorf("Normalize = %v", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize = %v, want zero", got)
	}
	if got := V3(-5, 128, 300).Clamp(0, 255); got != V3(0, 128, 255) {
		t.Errorf("Clamp = %v", got)
	}
	if V3(1, math.NaN(), 0).IsFinite() || V3(math.Inf(1), 0, 0).IsFinite() {
		t.Error("IsFinite accepted a non-finite vector")
	}
	if got := Radians(180); math.Abs(got-math.Pi) > eps {
		t.Errorf("Radians(180) = %v", got)
	}
}
