package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/flange/spatialmath"
)

var testLink = FrameConfig{Alpha: 0, A: 0.1, D: 1, Theta: math.Pi / 2}

func expectPose(t *testing.T, got spatialmath.Pose, point, euler r3.Vector) {
	t.Helper()
	want := spatialmath.NewPoseFromEuler(point, euler)
	test.That(t, spatialmath.PoseAlmostEqual(got, want, 1e-9), test.ShouldBeTrue)
}

func TestDHTransform(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		expectPose(t, testLink.Pose(), r3.Vector{X: -0.1, Y: 1}, r3.Vector{Y: -90})
	})
	t.Run("angle", func(t *testing.T) {
		expectPose(t, NewDHTransform(testLink, math.Pi/2, 0), r3.Vector{Y: 1, Z: -0.1}, r3.Vector{Y: 180})
	})
	t.Run("displacement", func(t *testing.T) {
		expectPose(t, NewDHTransform(testLink, 0, 1), r3.Vector{X: -0.1, Y: 2}, r3.Vector{Y: -90})
	})
	t.Run("angle and displacement", func(t *testing.T) {
		expectPose(t, NewDHTransform(testLink, math.Pi/2, 1), r3.Vector{Y: 2, Z: -0.1}, r3.Vector{Y: 180})
	})
	t.Run("NaN angle is ignored", func(t *testing.T) {
		test.That(t, spatialmath.PoseAlmostEqual(NewDHTransform(testLink, math.NaN(), 0), testLink.Pose(), 0), test.ShouldBeTrue)
	})
}

func TestJointTransform(t *testing.T) {
	rotary := DefaultJointConfig()
	pose, err := JointTransform(testLink, rotary, 90)
	test.That(t, err, test.ShouldBeNil)
	expectPose(t, pose, r3.Vector{Y: 1, Z: -0.1}, r3.Vector{Y: 180})

	// Values are clamped before they reach the transform.
	clamped, err := JointTransform(testLink, JointConfig{Type: Rotary, Limit: Limit{-45, 45}, Factor: 1}, 90)
	test.That(t, err, test.ShouldBeNil)
	direct, err := JointTransform(testLink, rotary, 45)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(clamped, direct, 1e-12), test.ShouldBeTrue)

	prismatic := JointConfig{Type: Prismatic, Limit: Limit{0, 2}, Factor: 1}
	pose, err = JointTransform(testLink, prismatic, 1)
	test.That(t, err, test.ShouldBeNil)
	expectPose(t, pose, r3.Vector{X: -0.1, Y: 2}, r3.Vector{Y: -90})

	_, err = JointTransform(testLink, JointConfig{Type: JointType(7), Factor: 1}, 1)
	test.That(t, err, test.ShouldWrap, ErrUnknownJointType)
}
