// Package spatialmath defines the rigid transforms and angle helpers used by the kinematics
// solvers. Poses use a Y-up frame convention and Euler angles are given in degrees.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform stored as a 4x4 homogeneous matrix. The zero value is not a valid
// pose; use NewZeroPose for the identity.
type Pose struct {
	mat mgl64.Mat4
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return Pose{mgl64.Ident4()}
}

// NewPoseFromRows builds a pose from the first three matrix rows; the last row is 0 0 0 1.
func NewPoseFromRows(r0, r1, r2 [4]float64) Pose {
	return Pose{mgl64.Mat4FromRows(
		mgl64.Vec4(r0),
		mgl64.Vec4(r1),
		mgl64.Vec4(r2),
		mgl64.Vec4{0, 0, 0, 1},
	)}
}

// NewPoseFromPoint returns a pure translation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{mgl64.Translate3D(point.X, point.Y, point.Z)}
}

// NewPose builds a pose from a translation and a unit quaternion.
func NewPose(point r3.Vector, q quat.Number) Pose {
	rot := mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Normalize().Mat4()
	return Pose{mgl64.Translate3D(point.X, point.Y, point.Z).Mul4(rot)}
}

// NewPoseFromEuler builds a pose from a translation and Euler angles in degrees. The rotation is
// applied in Y, X, Z order, i.e. R = Ry·Rx·Rz.
func NewPoseFromEuler(point r3.Vector, euler r3.Vector) Pose {
	rot := mgl64.HomogRotate3DY(DegToRad(euler.Y)).
		Mul4(mgl64.HomogRotate3DX(DegToRad(euler.X))).
		Mul4(mgl64.HomogRotate3DZ(DegToRad(euler.Z)))
	return Pose{mgl64.Translate3D(point.X, point.Y, point.Z).Mul4(rot)}
}

// At returns the matrix element at row r, column c.
func (p Pose) At(r, c int) float64 {
	return p.mat.At(r, c)
}

// Point returns the translation part.
func (p Pose) Point() r3.Vector {
	return r3.Vector{X: p.mat.At(0, 3), Y: p.mat.At(1, 3), Z: p.mat.At(2, 3)}
}

// Column returns column c (0..2) of the rotation part, i.e. the direction of local axis c.
func (p Pose) Column(c int) r3.Vector {
	return r3.Vector{X: p.mat.At(0, c), Y: p.mat.At(1, c), Z: p.mat.At(2, c)}
}

// Quaternion returns the rotation part as a unit quaternion.
func (p Pose) Quaternion() quat.Number {
	q := mgl64.Mat4ToQuat(p.mat).Normalize()
	return quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
}

// Euler returns the rotation as Y, X, Z ordered Euler angles in degrees, each in [0, 360).
func (p Pose) Euler() r3.Vector {
	// R = Ry(y)·Rx(x)·Rz(z), so m12 = -sin(x).
	sx := -p.mat.At(1, 2)
	var x, y, z float64
	switch {
	case sx > 1-FloatTolerance:
		x = math.Pi / 2
		y = math.Atan2(p.mat.At(0, 1), p.mat.At(0, 0))
	case sx < -1+FloatTolerance:
		x = -math.Pi / 2
		y = math.Atan2(-p.mat.At(0, 1), p.mat.At(0, 0))
	default:
		x = math.Asin(sx)
		y = math.Atan2(p.mat.At(0, 2), p.mat.At(2, 2))
		z = math.Atan2(p.mat.At(1, 0), p.mat.At(1, 1))
	}
	return r3.Vector{
		X: Angle360(RadToDeg(x)),
		Y: Angle360(RadToDeg(y)),
		Z: Angle360(RadToDeg(z)),
	}
}

// Compose returns p·other.
func (p Pose) Compose(other Pose) Pose {
	return Pose{p.mat.Mul4(other.mat)}
}

// Inverse returns the inverse transform. A singular matrix yields the zero matrix.
func (p Pose) Inverse() Pose {
	return Pose{p.mat.Inv()}
}

// Transform maps a point through the pose.
func (p Pose) Transform(point r3.Vector) r3.Vector {
	v := p.mat.Mul4x1(mgl64.Vec4{point.X, point.Y, point.Z, 1})
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// TransformDirection rotates a direction without translating it.
func (p Pose) TransformDirection(dir r3.Vector) r3.Vector {
	v := p.mat.Mul4x1(mgl64.Vec4{dir.X, dir.Y, dir.Z, 0})
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Translate returns the pose moved by offset in the parent frame.
func (p Pose) Translate(offset r3.Vector) Pose {
	return NewPoseFromPoint(offset).Compose(p)
}

// HasNaN reports whether any element is NaN.
func (p Pose) HasNaN() bool {
	for _, v := range p.mat {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func (p Pose) String() string {
	pt := p.Point()
	e := p.Euler()
	return fmt.Sprintf("pos(%.4f, %.4f, %.4f) euler(%.3f, %.3f, %.3f)", pt.X, pt.Y, pt.Z, e.X, e.Y, e.Z)
}

// PoseBetween returns the pose b expressed in the frame of a, i.e. inv(a)·b.
func PoseBetween(a, b Pose) Pose {
	return a.Inverse().Compose(b)
}

// OrientationDistance returns the rotation angle in radians between the orientations of a and b.
func OrientationDistance(a, b Pose) float64 {
	q := quat.Mul(b.Quaternion(), quat.Conj(a.Quaternion()))
	return 2 * math.Atan2(math.Sqrt(q.Imag*q.Imag+q.Jmag*q.Jmag+q.Kmag*q.Kmag), math.Abs(q.Real))
}

// PoseAlmostEqual compares two poses element-wise within epsilon.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	for i := range a.mat {
		if !scalar.EqualWithinAbs(a.mat[i], b.mat[i], epsilon) {
			return false
		}
	}
	return true
}

// R3VectorAlmostEqual compares two vectors component-wise within epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, epsilon) &&
		scalar.EqualWithinAbs(a.Y, b.Y, epsilon) &&
		scalar.EqualWithinAbs(a.Z, b.Z, epsilon)
}
