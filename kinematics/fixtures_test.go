package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	rf "go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

func rotaryJoints(n int, limit float64) []rf.JointConfig {
	joints := make([]rf.JointConfig, n)
	for i := range joints {
		joints[i] = rf.JointConfig{Type: rf.Rotary, Limit: rf.Limit{Min: -limit, Max: limit}, Factor: 1}
	}
	return joints
}

// offsetWristConfig is a UR style arm with a 0.425 m upper arm and 0.392 m forearm.
func offsetWristConfig() rf.MechanicalUnitConfig {
	return rf.MechanicalUnitConfig{
		Frames: []rf.FrameConfig{
			{},
			{Alpha: math.Pi / 2, D: 0.089},
			{Alpha: math.Pi, A: 0.425, Theta: math.Pi},
			{Alpha: math.Pi, A: 0.392},
			{Alpha: math.Pi / 2, D: 0.109},
			{Alpha: -math.Pi / 2, D: 0.095},
			{D: 0.082},
			{},
		},
		Joints: rotaryJoints(6, 360),
	}
}

// sphericalWristConfig is an industrial arm with a 0.455 m upper arm and 0.42 m forearm.
func sphericalWristConfig() rf.MechanicalUnitConfig {
	return rf.MechanicalUnitConfig{
		Frames: []rf.FrameConfig{
			{},
			{Alpha: -math.Pi / 2, D: 0.4, A: 0.025},
			{A: 0.455, Theta: -math.Pi / 2},
			{Alpha: -math.Pi / 2, A: 0.035},
			{Alpha: -math.Pi / 2, D: 0.42, Theta: math.Pi},
			{Alpha: math.Pi / 2},
			{D: 0.08},
			{},
		},
		Joints: rotaryJoints(6, 360),
	}
}

func scaraConfig() rf.MechanicalUnitConfig {
	return rf.MechanicalUnitConfig{
		Frames: []rf.FrameConfig{{}, {A: 0.3, D: 0.2202}, {A: 0.25}, {}, {}, {}},
		Joints: []rf.JointConfig{
			{Type: rf.Rotary, Limit: rf.Limit{Min: -170, Max: 170}, Factor: 1},
			{Type: rf.Rotary, Limit: rf.Limit{Min: -150, Max: 150}, Factor: -1},
			{Type: rf.Prismatic, Limit: rf.Limit{Min: -0.3, Max: 0}, Factor: 1},
			{Type: rf.Rotary, Limit: rf.Limit{Min: -360, Max: 360}, Factor: -1},
		},
	}
}

// deltaConfig hangs the base plane 0.275 m below the robot origin.
func deltaConfig() rf.MechanicalUnitConfig {
	frames := make([]rf.FrameConfig, 14)
	frames[1] = rf.FrameConfig{A: 0.2, D: -0.275}
	frames[2] = rf.FrameConfig{A: 0.235}
	frames[3] = rf.FrameConfig{A: 0.8}
	frames[10] = rf.FrameConfig{A: 0.045}
	return rf.MechanicalUnitConfig{Frames: frames, Joints: rotaryJoints(3, 180)}
}

func newTestRobot(t *testing.T, kind string, cfg rf.MechanicalUnitConfig) Robot {
	t.Helper()
	robot, err := NewRobot(kind, kind, cfg, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	return robot
}

func forward(t *testing.T, robot Robot, values ...float64) spatialmath.Pose {
	t.Helper()
	pose, err := robot.ComputeForward(values)
	test.That(t, err, test.ShouldBeNil)
	return pose
}

func assertPoint(t *testing.T, pose spatialmath.Pose, x, y, z float64) {
	t.Helper()
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: x, Y: y, Z: z}, 1e-7), test.ShouldBeTrue)
}

func assertJoints(t *testing.T, sol IKSolution, want ...float64) {
	t.Helper()
	test.That(t, sol.Err, test.ShouldBeNil)
	test.That(t, sol.IsValid(), test.ShouldBeTrue)
	for i, v := range want {
		test.That(t, sol.JointTarget.Rob[i], test.ShouldAlmostEqual, v, 1e-2)
	}
}

// assertReaches checks that the solution drives the robot onto target.
func assertReaches(t *testing.T, robot Robot, sol IKSolution, target spatialmath.Pose) {
	t.Helper()
	pose, err := robot.ComputeForward(sol.JointTarget.Rob[:robot.JointCount()])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(pose, target, 1e-4), test.ShouldBeTrue)
}
