package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order: element (row, col)
// lives at index row+col*4. Vectors are columns and transforms compose
// right to left, so a.Mul(b) applies b first.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Translate returns a matrix that moves points by v.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// RotateX returns a right-handed rotation of angle radians about +X.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m.Set(1, 1, c)
	m.Set(1, 2, -s)
	m.Set(2, 1, s)
	m.Set(2, 2, c)
	return m
}

// RotateY returns a right-handed rotation of angle radians about +Y.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m.Set(0, 0, c)
	m.Set(0, 2, s)
	m.Set(2, 0, -s)
	m.Set(2, 2, c)
	return m
}

// RotateZ returns a right-handed rotation of angle radians about +Z.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m.Set(0, 0, c)
	m.Set(0, 1, -s)
	m.Set(1, 0, s)
	m.Set(1, 1, c)
	return m
}

// Projection returns the perspective matrix used by the renderer. It maps
// a camera-space point (x, y, z, 1) to the clip coordinate (d·x, y, 1, z),
// so the perspective divide yields (d·x/z, y/z, 1/z). d is the viewport
// height divided by its width, which keeps pixels square with a 90 degree
// vertical field of view.
func Projection(d float64) Mat4 {
	var m Mat4
	m.Set(0, 0, d)
	m.Set(1, 1, 1)
	m.Set(2, 3, 1)
	m.Set(3, 2, 1)
	return m
}

// Mul returns the product a·b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms a position by an affine matrix (w=1, no divide).
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec4(Point(v)).XYZ()
}

// MulDir transforms a direction (w=0), ignoring translation.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.MulVec4(Vec4{v.X, v.Y, v.Z, 0}).XYZ()
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set stores val at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}

// Row returns row i as a vector.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i], m[i+4], m[i+8], m[i+12]}
}

// Transpose swaps rows and columns.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// Inverse returns the inverse of m computed by Gauss-Jordan elimination
// with partial pivoting. ok is false when m is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	a := m
	inv = Identity()
	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a.Get(row, col)) > math.Abs(a.Get(pivot, col)) {
				pivot = row
			}
		}
		if math.Abs(a.Get(pivot, col)) < 1e-12 {
			return Identity(), false
		}
		if pivot != col {
			a.swapRows(pivot, col)
			inv.swapRows(pivot, col)
		}

		scale := 1 / a.Get(col, col)
		for k := range 4 {
			a.Set(col, k, a.Get(col, k)*scale)
			inv.Set(col, k, inv.Get(col, k)*scale)
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := a.Get(row, col)
			if f == 0 {
				continue
			}
			for k := range 4 {
				a.Set(row, k, a.Get(row, k)-f*a.Get(col, k))
				inv.Set(row, k, inv.Get(row, k)-f*inv.Get(col, k))
			}
		}
	}
	return inv, true
}

func (m *Mat4) swapRows(i, j int) {
	for k := range 4 {
		m[i+k*4], m[j+k*4] = m[j+k*4], m[i+k*4]
	}
}

// ApproxEqual reports whether every element of a and b differs by at most
// eps.
//
//nolint:st1016 // a,b naming convention is clearer for comparisons
func (a Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
