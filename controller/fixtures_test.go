package controller

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.uber.org/zap/zaptest/observer"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
	rf "go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

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

// liftConfig is a single prismatic axis moving straight up.
func liftConfig() rf.MechanicalUnitConfig {
	return rf.MechanicalUnitConfig{
		Frames: []rf.FrameConfig{{}, {}, {}},
		Joints: []rf.JointConfig{{Type: rf.Prismatic, Limit: rf.Limit{Min: 0, Max: 1}, Factor: 1}},
	}
}

// turntableConfig is a single rotary axis about the vertical.
func turntableConfig() rf.MechanicalUnitConfig {
	return rf.MechanicalUnitConfig{
		Frames: []rf.FrameConfig{{}, {}, {}},
		Joints: []rf.JointConfig{{Type: rf.Rotary, Limit: rf.Limit{Min: -180, Max: 180}, Factor: 1}},
	}
}

type cell struct {
	logger    logging.Logger
	logs      *observer.ObservedLogs
	robot     kinematics.Robot
	lift      *kinematics.MechanicalUnit
	turntable *kinematics.MechanicalUnit
	group     *MechanicalGroup
	c         *Controller
}

var (
	home      = []float64{10, 20, -0.15, 30}
	gripper   = spatialmath.NewPoseFromPoint(r3.Vector{Y: -0.1})
	tableZero = spatialmath.NewPoseFromPoint(r3.Vector{X: 0.3, Z: 0.2})
)

// newCell builds a SCARA on a lift at 0.5 m with a turntable at 2 m along X, a gripper tool, a
// fixed table frame and a frame mounted on the turntable.
func newCell(t *testing.T) *cell {
	t.Helper()
	logger, logs := logging.NewObservedTestLogger(t)

	robot, err := kinematics.NewRobot(kinematics.ScaraKind, "scara", scaraConfig(), spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, robot.SetValues(home), test.ShouldBeNil)

	lift, err := kinematics.NewMechanicalUnit("lift", liftConfig(), spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lift.SetValues([]float64{0.5}), test.ShouldBeNil)

	turntable, err := kinematics.NewMechanicalUnit("turntable", turntableConfig(),
		spatialmath.NewPoseFromPoint(r3.Vector{X: 2}))
	test.That(t, err, test.ShouldBeNil)

	group := NewMechanicalGroup(logger.Sublogger("group"), robot, lift, turntable)
	c, err := NewController(logger, group,
		[]Tool{NewTool("gripper", OnRobot, gripper)},
		[]ReferenceFrame{
			NewStaticReferenceFrame("table", tableZero),
			NewMountedReferenceFrame("fixture", turntable, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5})),
		})
	test.That(t, err, test.ShouldBeNil)

	return &cell{logger, logs, robot, lift, turntable, group, c}
}

// jammedUnit refuses new joint values while jammed.
type jammedUnit struct {
	*kinematics.MechanicalUnit
	jammed bool
}

var errJammed = errors.New("axis is jammed")

func (u *jammedUnit) SetValues(values []float64) error {
	if u.jammed {
		return errJammed
	}
	return u.MechanicalUnit.SetValues(values)
}

// newJammableController builds a SCARA at home with a jammable track as its only external unit.
func newJammableController(t *testing.T) (*Controller, kinematics.Robot, *jammedUnit) {
	t.Helper()
	logger := logging.NewTestLogger(t)
	robot, err := kinematics.NewRobot(kinematics.ScaraKind, "scara", scaraConfig(), spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, robot.SetValues(home), test.ShouldBeNil)

	unit, err := kinematics.NewMechanicalUnit("track", liftConfig(), spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	track := &jammedUnit{MechanicalUnit: unit}

	c, err := NewController(logger, NewMechanicalGroup(logger.Sublogger("group"), robot, nil, track), nil, nil)
	test.That(t, err, test.ShouldBeNil)
	return c, robot, track
}

func poseClose(t *testing.T, a, b spatialmath.Pose) {
	t.Helper()
	test.That(t, spatialmath.PoseAlmostEqual(a, b, 1e-4), test.ShouldBeTrue)
}
