package controller

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
	rf "go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

func TestToolIndex(t *testing.T) {
	cell := newCell(t)

	test.That(t, cell.c.ValidToolIndex(0), test.ShouldEqual, 0)
	test.That(t, cell.c.ValidToolIndex(1), test.ShouldEqual, 1)
	test.That(t, cell.c.ValidToolIndex(-1), test.ShouldEqual, 0)
	test.That(t, cell.c.ToolOffset(1), test.ShouldResemble, gripper)
	test.That(t, cell.c.ToolOffset(0), test.ShouldResemble, spatialmath.NewZeroPose())

	test.That(t, cell.c.ValidToolIndex(2), test.ShouldEqual, 0)
	test.That(t, cell.logs.FilterMessage("using flange instead of tool").Len(), test.ShouldEqual, 1)

	cell.c.SetTool(1)
	test.That(t, cell.c.ValidToolIndex(-1), test.ShouldEqual, 1)

	pose := spatialmath.NewPoseFromEuler(r3.Vector{X: 1}, r3.Vector{Z: 90})
	poseClose(t, cell.c.RemoveToolOffset(cell.c.AddToolOffset(pose, 1), 1), pose)
	tcp := cell.c.AddToolOffset(pose, 1)
	test.That(t, spatialmath.R3VectorAlmostEqual(tcp.Point(), r3.Vector{X: 1.1}, 1e-9), test.ShouldBeTrue)

	second := NewTool("scanner", Extern, spatialmath.NewZeroPose())
	test.That(t, cell.c.AddTool(second), test.ShouldEqual, 2)
	test.That(t, cell.c.Tools()[1].ID, test.ShouldEqual, second.ID)
}

func TestFrameIndex(t *testing.T) {
	cell := newCell(t)

	test.That(t, cell.c.FrameAt(-1), test.ShouldResemble, WorldReferenceFrame{})
	test.That(t, cell.c.FrameAt(0), test.ShouldEqual, cell.group)
	test.That(t, cell.c.FrameAt(1).Name(), test.ShouldEqual, "table")
	test.That(t, cell.c.FrameAt(2).Name(), test.ShouldEqual, "fixture")
	test.That(t, cell.c.FrameAt(3), test.ShouldResemble, WorldReferenceFrame{})
	test.That(t, cell.logs.FilterMessage("using world instead of reference frame").Len(), test.ShouldEqual, 1)

	cell.c.SetFrame(1)
	test.That(t, cell.c.ActiveFrame().Name(), test.ShouldEqual, "table")
}

func TestFrameConversions(t *testing.T) {
	cell := newCell(t)
	ext := cell.group.JointState().Ext
	pose := spatialmath.NewPoseFromEuler(r3.Vector{X: 0.1, Y: 0.2, Z: 0.3}, r3.Vector{Y: 30})

	world, err := cell.c.FrameToWorld(pose, 1, ext)
	test.That(t, err, test.ShouldBeNil)
	poseClose(t, world, tableZero.Compose(pose))

	back, err := cell.c.WorldToFrame(world, 1, ext)
	test.That(t, err, test.ShouldBeNil)
	poseClose(t, back, pose)

	inBase, err := cell.c.ConvertFrame(pose, 1, int(Base), ext)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(inBase.Point(), r3.Vector{X: 0.4, Y: -0.3, Z: 0.5}, 1e-9),
		test.ShouldBeTrue)

	target := NewCartesianTarget(pose, kinematics.Configuration{}, ext)
	converted, err := cell.c.ConvertTarget(target, 1, int(World))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, converted.Object, test.ShouldEqual, target.Object)
	poseClose(t, converted.Pose, world)
}

func TestMountedReferenceFrame(t *testing.T) {
	cell := newCell(t)
	fixture := cell.c.FrameAt(2)

	origin, err := fixture.WorldFrame()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(origin.Point(), r3.Vector{X: 2.5}, 1e-9), test.ShouldBeTrue)

	ext := cell.group.JointState().Ext
	ext[1] = 90
	origin, err = fixture.WorldFrameAt(cell.group, ext)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(origin.Point(), r3.Vector{X: 2, Z: 0.5}, 1e-9), test.ShouldBeTrue)

	static := NewStaticReferenceFrame("static", tableZero)
	origin, err = static.WorldFrameAt(cell.group, ext)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, origin, test.ShouldResemble, tableZero)
	test.That(t, static.Unit(), test.ShouldBeNil)
}

func TestPoseObserver(t *testing.T) {
	cell := newCell(t)
	observer := cell.c.PoseObserver()
	changes := 0
	observer.OnPoseChanged(func() { changes++ })

	flange, err := cell.group.ComputeForwardLive(Base)
	test.That(t, err, test.ShouldBeNil)
	poseClose(t, observer.Flange(), flange)
	poseClose(t, observer.TCPBase(), flange)

	cell.c.SetTool(1)
	test.That(t, changes, test.ShouldEqual, 1)
	poseClose(t, observer.TCPBase(), flange.Compose(gripper))
	world, err := cell.group.ComputeForwardLive(World)
	test.That(t, err, test.ShouldBeNil)
	poseClose(t, observer.TCPWorld(), world.Compose(gripper))

	cell.c.SetFrame(1)
	test.That(t, changes, test.ShouldEqual, 2)
	poseClose(t, observer.TCPFrame(), tableZero.Inverse().Compose(world.Compose(gripper)))

	cell.c.SetFrame(1)
	test.That(t, changes, test.ShouldEqual, 2)

	test.That(t, cell.group.SetJoint(0, 40, true, false), test.ShouldBeNil)
	test.That(t, changes, test.ShouldEqual, 3)
	moved, err := cell.group.ComputeForwardLive(Base)
	test.That(t, err, test.ShouldBeNil)
	poseClose(t, observer.Flange(), moved)

	tcp, err := cell.c.TCPRelativeToFrame()
	test.That(t, err, test.ShouldBeNil)
	poseClose(t, tcp, observer.TCPFrame())
}

func TestInvalidController(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	group := NewMechanicalGroup(logger, nil, nil)
	c, err := NewController(logger, group, nil, nil)
	test.That(t, err, test.ShouldEqual, kinematics.ErrRobotNotDefined)
	test.That(t, c.IsValid(), test.ShouldBeFalse)
	test.That(t, logs.FilterMessage("controller is not valid").Len(), test.ShouldEqual, 1)

	jt, err := rf.NewJointTarget(0, 0, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	sol := kinematics.NewIKSolution(jt, kinematics.Configuration{})
	sol.Validate(scaraConfig().Joints)
	test.That(t, c.Solver().TryApplySolution(sol, true), test.ShouldBeFalse)
	test.That(t, logs.FilterMessage("cannot apply solution").Len(), test.ShouldEqual, 1)
}

func TestCartesianTarget(t *testing.T) {
	target := DefaultCartesianTarget()
	test.That(t, target.ExtJoint, test.ShouldResemble, rf.DefaultExtJoint())

	moved := target.AddTranslation(r3.Vector{X: 1})
	test.That(t, spatialmath.R3VectorAlmostEqual(moved.Pose.Point(), r3.Vector{X: 1}, 1e-12), test.ShouldBeTrue)
	test.That(t, target.Pose, test.ShouldResemble, spatialmath.NewZeroPose())

	// A quarter turn about Y, then a step along the rotated X axis.
	turned := moved.AddRotation(spatialmath.NewPoseFromEuler(r3.Vector{}, r3.Vector{Y: 90}).Quaternion()).
		AddTranslation(r3.Vector{X: 1})
	test.That(t, spatialmath.R3VectorAlmostEqual(turned.Pose.Point(), r3.Vector{X: 1, Z: -1}, 1e-9), test.ShouldBeTrue)

	offset := spatialmath.NewPoseFromPoint(r3.Vector{Y: 2})
	poseClose(t, moved.AddOffset(offset).Pose, moved.Pose.Compose(offset))
}
