package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/taigrr/phong/pkg/math3d"
)

// Camera is a pose in world space. Rotation holds Euler angles in degrees,
// applied about X, then Y, then Z. An unrotated camera looks down +Z with
// +X to the right of the screen and +Y up.
//
// Camera is a plain value: the view matrix and basis are derived on every
// call, so a copy taken at the start of a frame is a consistent snapshot.
type Camera struct {
	Position math3d.Vec3
	Rotation math3d.Vec3
}

// NewCamera creates a camera at position with the given rotation in degrees.
func NewCamera(position, rotation math3d.Vec3) Camera {
	return Camera{Position: position, Rotation: rotation}
}

// ViewMatrix returns the world-to-camera transform: translation by
// -Position followed by the inverse rotation
// RotateX(-x)·RotateY(-y)·RotateZ(-z).
func (c Camera) ViewMatrix() math3d.Mat4 {
	rx := math3d.Radians(c.Rotation.X)
	ry := math3d.Radians(c.Rotation.Y)
	rz := math3d.Radians(c.Rotation.Z)
	rot := math3d.RotateX(-rx).Mul(math3d.RotateY(-ry)).Mul(math3d.RotateZ(-rz))
	return rot.Mul(math3d.Translate(c.Position.Negate()))
}

// Basis returns the camera's right, up and forward axes in world space:
// the columns of the orientation Rz(z)·Ry(y)·Rx(x).
func (c Camera) Basis() (right, up, forward math3d.Vec3) {
	o := mgl64.Rotate3DZ(mgl64.DegToRad(c.Rotation.Z)).
		Mul3(mgl64.Rotate3DY(mgl64.DegToRad(c.Rotation.Y))).
		Mul3(mgl64.Rotate3DX(mgl64.DegToRad(c.Rotation.X)))
	return fromMgl(o.Col(0)), fromMgl(o.Col(1)), fromMgl(o.Col(2))
}

// ToCamera expresses a world point in camera coordinates by projecting its
// offset from the camera onto the basis. It agrees with ViewMatrix.
func (c Camera) ToCamera(world math3d.Vec3) math3d.Vec3 {
	right, up, forward := c.Basis()
	d := world.Sub(c.Position)
	return math3d.V3(d.Dot(right), d.Dot(up), d.Dot(forward))
}

// Forward returns the viewing direction in world space.
func (c Camera) Forward() math3d.Vec3 {
	_, _, f := c.Basis()
	return f
}

func fromMgl(v mgl64.Vec3) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}
