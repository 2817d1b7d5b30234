// Package kinematics implements the mechanical units driven by a controller: plain serial
// units such as tracks and turntables, and the analytic robot solvers.
package kinematics

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// Unit is a mechanical unit with a kinematic chain and live joint values.
type Unit interface {
	Name() string
	Chain() referenceframe.FrameChain
	JointCount() int
	Values() []float64
	SetValues(values []float64) error
	// World is the pose of the unit's base in world coordinates.
	World() spatialmath.Pose
	SetWorld(pose spatialmath.Pose)
	// ComputeForward returns the flange pose in the unit's base coordinates.
	ComputeForward(values []float64) (spatialmath.Pose, error)
	Config() referenceframe.MechanicalUnitConfig
	LoadConfig(cfg referenceframe.MechanicalUnitConfig) error
}

// MechanicalUnit is a serial chain of DH links. It is used directly for external axes and is
// embedded by every robot.
type MechanicalUnit struct {
	name string

	mu     sync.RWMutex
	chain  referenceframe.FrameChain
	limit  referenceframe.CartesianLimit
	world  spatialmath.Pose
	values []float64
}

// NewMechanicalUnit returns a unit with all joints at zero.
func NewMechanicalUnit(name string, cfg referenceframe.MechanicalUnitConfig, world spatialmath.Pose) (*MechanicalUnit, error) {
	chain := cfg.Chain()
	if err := chain.Validate(); err != nil {
		return nil, errors.Wrapf(err, "mechanical unit %q", name)
	}
	if err := checkFactors(chain.Joints); err != nil {
		return nil, errors.Wrapf(err, "mechanical unit %q", name)
	}
	return &MechanicalUnit{
		name:   name,
		chain:  copyChain(chain),
		limit:  cfg.Limit(),
		world:  world,
		values: make([]float64, len(chain.Joints)),
	}, nil
}

func checkFactors(joints []referenceframe.JointConfig) error {
	for i, joint := range joints {
		if joint.Factor == 0 {
			return errors.Wrapf(ErrZeroFactor, "joint %d", i+1)
		}
	}
	return nil
}

func copyChain(chain referenceframe.FrameChain) referenceframe.FrameChain {
	return referenceframe.FrameChain{
		Frames: append([]referenceframe.FrameConfig(nil), chain.Frames...),
		Joints: append([]referenceframe.JointConfig(nil), chain.Joints...),
	}
}

// Name returns the unit name.
func (u *MechanicalUnit) Name() string {
	return u.name
}

// Chain returns a copy of the unit's frames and joints.
func (u *MechanicalUnit) Chain() referenceframe.FrameChain {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return copyChain(u.chain)
}

// JointCount returns the number of joints.
func (u *MechanicalUnit) JointCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.chain.Joints)
}

// Values returns a copy of the live joint values.
func (u *MechanicalUnit) Values() []float64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]float64(nil), u.values...)
}

// SetValues replaces the live joint values. Values are stored as given; limits are checked
// by the caller.
func (u *MechanicalUnit) SetValues(values []float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(values) != len(u.chain.Joints) {
		return referenceframe.NewIncorrectInputLengthError(len(values), len(u.chain.Joints))
	}
	copy(u.values, values)
	return nil
}

// World returns the unit's base pose in world coordinates.
func (u *MechanicalUnit) World() spatialmath.Pose {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.world
}

// SetWorld moves the unit's base.
func (u *MechanicalUnit) SetWorld(pose spatialmath.Pose) {
	u.mu.Lock()
	u.world = pose
	u.mu.Unlock()
}

// CartesianLimit returns the advisory flange envelope.
func (u *MechanicalUnit) CartesianLimit() referenceframe.CartesianLimit {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.limit
}

// ComputeForward composes the chain for values.
func (u *MechanicalUnit) ComputeForward(values []float64) (spatialmath.Pose, error) {
	return u.Chain().Compose(values)
}

// Config snapshots the unit geometry.
func (u *MechanicalUnit) Config() referenceframe.MechanicalUnitConfig {
	u.mu.RLock()
	defer u.mu.RUnlock()
	limit := u.limit
	chain := copyChain(u.chain)
	return referenceframe.MechanicalUnitConfig{Frames: chain.Frames, Joints: chain.Joints, CartesianLimit: &limit}
}

// LoadConfig replaces the unit geometry. The frame and joint counts must match.
func (u *MechanicalUnit) LoadConfig(cfg referenceframe.MechanicalUnitConfig) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	current := referenceframe.MechanicalUnitConfig{Frames: u.chain.Frames, Joints: u.chain.Joints}
	if err := current.CheckCompatible(cfg); err != nil {
		return errors.Wrapf(err, "mechanical unit %q", u.name)
	}
	if err := checkFactors(cfg.Joints); err != nil {
		return errors.Wrapf(err, "mechanical unit %q", u.name)
	}
	u.chain = copyChain(cfg.Chain())
	if cfg.CartesianLimit != nil {
		u.limit = *cfg.CartesianLimit
	}
	return nil
}

// joints returns the joint configs without copying the frames.
func (u *MechanicalUnit) joints() []referenceframe.JointConfig {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]referenceframe.JointConfig(nil), u.chain.Joints...)
}
