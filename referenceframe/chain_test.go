package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/flange/spatialmath"
)

// scaraChain is an R-R-P-R arm with a 0.3 m and a 0.25 m link.
func scaraChain() FrameChain {
	return FrameChain{
		Frames: []FrameConfig{{}, {A: 0.3, D: 0.2202}, {A: 0.25}, {}, {}, {}},
		Joints: []JointConfig{
			{Type: Rotary, Limit: Limit{-170, 170}, Factor: 1},
			{Type: Rotary, Limit: Limit{-150, 150}, Factor: -1},
			{Type: Prismatic, Limit: Limit{-0.3, 0}, Factor: 1},
			{Type: Rotary, Limit: Limit{-360, 360}, Factor: -1},
		},
	}
}

func TestChainCompose(t *testing.T) {
	chain := scaraChain()
	test.That(t, chain.Validate(), test.ShouldBeNil)

	pose, err := chain.Compose([]float64{10, 20, -0.15, 30})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: -0.00868241, Y: 0.0702, Z: 0.54164426}, 1e-7),
		test.ShouldBeTrue)
	test.That(t, spatialmath.OrientationDistance(pose, spatialmath.NewPoseFromEuler(r3.Vector{}, r3.Vector{Y: 40})),
		test.ShouldAlmostEqual, 0, 1e-9)

	partial, err := chain.Partial([]float64{10, 20, -0.15, 30}, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(partial), test.ShouldEqual, 2)
	// After the first joint the elbow sits 0.3 m out along the rotated link.
	elbow := partial[0].Point()
	test.That(t, math.Hypot(elbow.X, elbow.Z), test.ShouldAlmostEqual, 0.3)
	test.That(t, elbow.Y, test.ShouldAlmostEqual, 0.2202)
}

func TestChainErrors(t *testing.T) {
	chain := scaraChain()
	_, err := chain.Compose([]float64{1, 2})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not match joint count")

	_, err = NewFrameChain(chain.Frames[:3], chain.Joints)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = chain.Partial([]float64{1}, 3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCheckRanges(t *testing.T) {
	chain := scaraChain()
	test.That(t, chain.CheckRanges([]float64{10, 20, -0.15, 30}), test.ShouldBeNil)

	err := chain.CheckRanges([]float64{171, 20, 0.1, 30})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint 1 value 171")
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint 3 value 0.1")
}

func TestUnitConfig(t *testing.T) {
	chain := scaraChain()
	cfg := MechanicalUnitConfig{Frames: chain.Frames, Joints: chain.Joints}
	test.That(t, cfg.Limit(), test.ShouldResemble, DefaultCartesianLimit())
	null := NullCartesianLimit()
	cfg.CartesianLimit = &null
	test.That(t, cfg.Limit(), test.ShouldResemble, CartesianLimit{})

	test.That(t, cfg.CheckCompatible(cfg), test.ShouldBeNil)
	test.That(t, cfg.CheckCompatible(MechanicalUnitConfig{Frames: chain.Frames}), test.ShouldNotBeNil)
	test.That(t, cfg.CheckCompatible(MechanicalUnitConfig{Joints: chain.Joints}), test.ShouldNotBeNil)
	test.That(t, cfg.Chain().Joints, test.ShouldResemble, chain.Joints)
}
