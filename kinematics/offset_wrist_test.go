package kinematics

import (
	"context"
	"testing"

	"go.viam.com/test"
)

func TestOffsetWristForward(t *testing.T) {
	robot := newTestRobot(t, OffsetWristKind, offsetWristConfig())
	pose := forward(t, robot, 152.729, -72.787, 101.398, 152.22, -152.87, -179.23)
	assertPoint(t, pose, -0.15347323, 0.63677158, -0.21910194)

	rows := [3][3]float64{
		{0.171005, 0.984830, -0.029440},
		{-0.922855, 0.170566, 0.345319},
		{0.345102, -0.031882, 0.938023},
	}
	for r, row := range rows {
		for c, want := range row {
			test.That(t, pose.At(r, c), test.ShouldAlmostEqual, want, 1e-6)
		}
	}

	_, err := robot.ComputeForward([]float64{1, 2, 3})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOffsetWristInverse(t *testing.T) {
	robot := newTestRobot(t, OffsetWristKind, offsetWristConfig())
	q := []float64{152.729, -72.787, 101.398, 152.22, -152.87, -179.23}
	target := forward(t, robot, q...)

	sol := robot.ComputeInverse(target, Configuration{Index: 1}, IgnoreNone)
	assertJoints(t, sol, q...)
	test.That(t, sol.Configuration, test.ShouldResemble, Configuration{Index: 1})

	index, err := robot.ConfigurationIndex(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, index, test.ShouldEqual, 1)

	t.Run("other branches", func(t *testing.T) {
		sol := robot.ComputeInverse(target, Configuration{Index: 0}, IgnoreNone)
		assertJoints(t, sol, 152.729, -89.505, 60.343, -52.118, 152.87, 0.77)
		sol = robot.ComputeInverse(target, Configuration{Index: 4}, IgnoreNone)
		assertJoints(t, sol, 292.763, -9.9, 100.509, 121.189, 65.767, -163.954)
	})

	t.Run("elbow up", func(t *testing.T) {
		q2 := []float64{30, -60, 70, 20, 40, 50}
		sol := robot.ComputeInverse(forward(t, robot, q2...), Configuration{Index: 0}, IgnoreNone)
		assertJoints(t, sol, q2...)
		assertPoint(t, forward(t, robot, q2...), 0.0934386, 0.6753284, 0.1817908)
	})

	t.Run("all branches", func(t *testing.T) {
		solutions, err := robot.ComputeInverseAll(context.Background(), target, false, IgnoreNone)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(solutions), test.ShouldEqual, 8)
		for i, sol := range solutions {
			test.That(t, sol.Configuration.Index, test.ShouldEqual, i)
			assertReaches(t, robot, sol, target)
			index, err := robot.ConfigurationIndex(sol.JointTarget.Rob[:6])
			test.That(t, err, test.ShouldBeNil)
			test.That(t, index, test.ShouldEqual, i)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		far := target.Translate(target.Point().Mul(5))
		sol := robot.ComputeInverse(far, Configuration{}, IgnoreNone)
		test.That(t, sol.IsValid(), test.ShouldBeFalse)
		test.That(t, sol.Err, test.ShouldBeError, ErrTargetNotReachable)
	})
}

func TestOffsetWristEdgeCases(t *testing.T) {
	robot := newTestRobot(t, OffsetWristKind, offsetWristConfig())
	for _, tc := range []struct {
		name     string
		joints   []float64
		index    int
		branches int
	}{
		{"home", []float64{0, -90, 0, -90, 0, 0}, 0, 8},
		{"straight wrist", []float64{10, -40, 50, -30, 0, 0}, 1, 8},
		{"stretched elbow", []float64{30, -60, 0, 20, 40, 50}, 1, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			target := forward(t, robot, tc.joints...)
			sol := robot.ComputeInverse(target, Configuration{Index: tc.index}, IgnoreAll)
			assertJoints(t, sol, tc.joints...)
			assertReaches(t, robot, sol, target)

			solutions, err := robot.ComputeInverseAll(context.Background(), target, false, IgnoreAll)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, len(solutions), test.ShouldEqual, tc.branches)
			for _, s := range solutions {
				assertReaches(t, robot, s, target)
			}
		})
	}

	t.Run("out of reach", func(t *testing.T) {
		target := forward(t, robot, 30, -60, 0, 20, 40, 50)
		far := target.Translate(target.Point().Normalize().Mul(0.01))
		for i := 0; i < robot.BranchCount(); i++ {
			sol := robot.ComputeInverse(far, Configuration{Index: i}, IgnoreAll)
			test.That(t, sol.State, test.ShouldEqual, SolutionError)
			test.That(t, sol.Err, test.ShouldBeError, ErrTargetNotReachable)
		}
	})
}

func TestOffsetWristTurns(t *testing.T) {
	robot := newTestRobot(t, OffsetWristKind, offsetWristConfig())
	target := forward(t, robot, 30, -60, 70, 20, 40, 50)

	solutions, err := robot.ComputeInverseAll(context.Background(), target, true, IgnoreNone)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(solutions), test.ShouldBeGreaterThan, 8)

	seen := map[Configuration]bool{}
	for _, sol := range solutions {
		test.That(t, sol.IsValid(), test.ShouldBeTrue)
		test.That(t, seen[sol.Configuration], test.ShouldBeFalse)
		seen[sol.Configuration] = true
		assertReaches(t, robot, sol, target)
	}
	test.That(t, seen[Configuration{Turn1: -1, Index: 0}], test.ShouldBeTrue)
	test.That(t, seen[Configuration{Turn1: -1, Turn4: -1, Turn6: -1, Index: 0}], test.ShouldBeTrue)
}
