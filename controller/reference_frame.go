package controller

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// ReferenceFrame is a coordinate system targets can be expressed in.
type ReferenceFrame interface {
	Name() string
	// WorldFrame returns the frame's pose in world coordinates for the live joint state.
	WorldFrame() (spatialmath.Pose, error)
	// WorldFrameAt returns the frame's pose when the group's external joints are at ext. Frames
	// carried by an external unit move with it.
	WorldFrameAt(group *MechanicalGroup, ext referenceframe.ExtJoint) (spatialmath.Pose, error)
}

var (
	_ ReferenceFrame = WorldReferenceFrame{}
	_ ReferenceFrame = (*StaticReferenceFrame)(nil)
	_ ReferenceFrame = (*MechanicalGroup)(nil)
)

// WorldReferenceFrame is the world coordinate system itself.
type WorldReferenceFrame struct{}

// Name returns "world".
func (WorldReferenceFrame) Name() string {
	return World.String()
}

// WorldFrame returns the identity.
func (WorldReferenceFrame) WorldFrame() (spatialmath.Pose, error) {
	return spatialmath.NewZeroPose(), nil
}

// WorldFrameAt returns the identity.
func (WorldReferenceFrame) WorldFrameAt(*MechanicalGroup, referenceframe.ExtJoint) (spatialmath.Pose, error) {
	return spatialmath.NewZeroPose(), nil
}

// StaticReferenceFrame is a user frame, either fixed in the world or mounted on a mechanical
// unit at a local pose relative to the unit's flange.
type StaticReferenceFrame struct {
	ID    uuid.UUID
	name  string
	world spatialmath.Pose
	unit  kinematics.Unit
	local spatialmath.Pose
}

// NewStaticReferenceFrame returns a frame fixed at world.
func NewStaticReferenceFrame(name string, world spatialmath.Pose) *StaticReferenceFrame {
	return &StaticReferenceFrame{ID: uuid.New(), name: name, world: world, local: spatialmath.NewZeroPose()}
}

// NewMountedReferenceFrame returns a frame carried by unit at local.
func NewMountedReferenceFrame(name string, unit kinematics.Unit, local spatialmath.Pose) *StaticReferenceFrame {
	return &StaticReferenceFrame{ID: uuid.New(), name: name, unit: unit, local: local, world: spatialmath.NewZeroPose()}
}

// Name returns the frame name.
func (f *StaticReferenceFrame) Name() string {
	return f.name
}

// Unit returns the carrying unit, or nil for a fixed frame.
func (f *StaticReferenceFrame) Unit() kinematics.Unit {
	return f.unit
}

// WorldFrame returns the frame pose for the carrying unit's live joint values.
func (f *StaticReferenceFrame) WorldFrame() (spatialmath.Pose, error) {
	if f.unit == nil {
		return f.world, nil
	}
	return f.mountedAt(f.unit.Values())
}

// WorldFrameAt returns the frame pose with the carrying unit at its share of ext.
func (f *StaticReferenceFrame) WorldFrameAt(group *MechanicalGroup, ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	if f.unit == nil {
		return f.world, nil
	}
	return f.mountedAt(group.UnitJointValues(f.unit, ext))
}

func (f *StaticReferenceFrame) mountedAt(values []float64) (spatialmath.Pose, error) {
	flange, err := f.unit.ComputeForward(values)
	if err != nil {
		return spatialmath.Pose{}, errors.Wrapf(err, "reference frame %q", f.name)
	}
	return f.unit.World().Compose(flange).Compose(f.local), nil
}
