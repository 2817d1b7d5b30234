package controller

import (
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// CartesianTarget is a pose to reach together with the configuration and external joint values
// to reach it with. Object identifies the target across copies.
type CartesianTarget struct {
	Object        uuid.UUID
	Pose          spatialmath.Pose
	Configuration kinematics.Configuration
	ExtJoint      referenceframe.ExtJoint
}

// NewCartesianTarget returns a target with a fresh Object ID.
func NewCartesianTarget(
	pose spatialmath.Pose,
	cfg kinematics.Configuration,
	ext referenceframe.ExtJoint,
) CartesianTarget {
	return CartesianTarget{Object: uuid.New(), Pose: pose, Configuration: cfg, ExtJoint: ext}
}

// DefaultCartesianTarget is the identity pose with the default configuration and unset
// external joints.
func DefaultCartesianTarget() CartesianTarget {
	return CartesianTarget{
		Pose:     spatialmath.NewZeroPose(),
		ExtJoint: referenceframe.DefaultExtJoint(),
	}
}

// AddOffset returns a copy with offset applied in the target's own frame.
func (t CartesianTarget) AddOffset(offset spatialmath.Pose) CartesianTarget {
	t.Pose = t.Pose.Compose(offset)
	return t
}

// AddTranslation returns a copy moved by v along the target's own axes.
func (t CartesianTarget) AddTranslation(v r3.Vector) CartesianTarget {
	return t.AddOffset(spatialmath.NewPoseFromPoint(v))
}

// AddRotation returns a copy rotated by q about the target's own origin.
func (t CartesianTarget) AddRotation(q quat.Number) CartesianTarget {
	return t.AddOffset(spatialmath.NewPose(r3.Vector{}, q))
}
