// Package controller ties a robot and its external axes into a mechanical group and exposes the
// cartesian solver used to move it: tool and reference frame conversions, inverse kinematics in
// world coordinates and application of solutions back onto the group.
package controller

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// CoordinateSystem selects the frame a forward kinematics result is expressed in. Its values
// double as frame indices.
type CoordinateSystem int

// Coordinate systems.
const (
	World CoordinateSystem = -1
	Base  CoordinateSystem = 0
)

func (cs CoordinateSystem) String() string {
	switch cs {
	case World:
		return "world"
	case Base:
		return "base"
	}
	return "frame"
}

// jointSpan is the range of external joints owned by one unit.
type jointSpan struct {
	offset, count int
}

// retargetFunc re-solves the robot joints of jt so the tool center point keeps its pose after
// an external joint change.
type retargetFunc func(jt referenceframe.JointTarget) (referenceframe.JointTarget, error)

// MechanicalGroup owns the joint state of a robot, an optional base unit carrying the robot and
// further external units. External joints are laid out base unit first, then the external units
// in order. The group is the only writer of the units' joint values.
type MechanicalGroup struct {
	logger    logging.Logger
	robot     kinematics.Robot
	base      kinematics.Unit
	externals []kinematics.Unit

	mu        sync.RWMutex
	valid     bool
	spans     map[kinematics.Unit]jointSpan
	extJoints []referenceframe.JointConfig
	state     referenceframe.JointTarget
	saved     referenceframe.JointTarget
	retarget  retargetFunc

	listenersMu     sync.Mutex
	onValidate      []func(error)
	onJointsChanged []func()
}

// NewMechanicalGroup returns an invalid group; call Validate before use. base may be nil.
func NewMechanicalGroup(
	logger logging.Logger,
	robot kinematics.Robot,
	base kinematics.Unit,
	externals ...kinematics.Unit,
) *MechanicalGroup {
	return &MechanicalGroup{
		logger:    logger,
		robot:     robot,
		base:      base,
		externals: externals,
		state:     referenceframe.DefaultJointTarget(),
		saved:     referenceframe.DefaultJointTarget(),
	}
}

// Robot returns the group's robot, which may be nil.
func (g *MechanicalGroup) Robot() kinematics.Robot {
	return g.robot
}

// BaseUnit returns the unit carrying the robot, or nil.
func (g *MechanicalGroup) BaseUnit() kinematics.Unit {
	return g.base
}

// ExternalUnits returns the external units in joint order, excluding the base unit.
func (g *MechanicalGroup) ExternalUnits() []kinematics.Unit {
	return append([]kinematics.Unit(nil), g.externals...)
}

// Name returns the robot name.
func (g *MechanicalGroup) Name() string {
	if g.robot == nil {
		return Base.String()
	}
	return g.robot.Name()
}

// IsValid reports whether the last Validate succeeded.
func (g *MechanicalGroup) IsValid() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.valid
}

// JointState returns a copy of the live joint target.
func (g *MechanicalGroup) JointState() referenceframe.JointTarget {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// OnValidate registers fn to run after every Validate with its result.
func (g *MechanicalGroup) OnValidate(fn func(error)) {
	g.listenersMu.Lock()
	g.onValidate = append(g.onValidate, fn)
	g.listenersMu.Unlock()
}

// OnJointStateChanged registers fn to run after each notifying joint update.
func (g *MechanicalGroup) OnJointStateChanged(fn func()) {
	g.listenersMu.Lock()
	g.onJointsChanged = append(g.onJointsChanged, fn)
	g.listenersMu.Unlock()
}

func (g *MechanicalGroup) setRetarget(fn retargetFunc) {
	g.mu.Lock()
	g.retarget = fn
	g.mu.Unlock()
}

// Validate lays out the external joints and seeds the joint state from the units' live values.
// On failure the group is left invalid. Validate listeners run either way.
func (g *MechanicalGroup) Validate() error {
	err := g.validate()
	if err != nil {
		g.logger.Errorw("mechanical group is not valid", "error", err)
	}
	g.listenersMu.Lock()
	listeners := append(([]func(error))(nil), g.onValidate...)
	g.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(err)
	}
	return err
}

func (g *MechanicalGroup) validate() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.valid = false

	if g.robot == nil {
		return kinematics.ErrRobotNotDefined
	}
	if g.robot.JointCount() > referenceframe.RobJointLength {
		return errors.Errorf("robot %q has %d joints, at most %d are supported",
			g.robot.Name(), g.robot.JointCount(), referenceframe.RobJointLength)
	}

	spans := map[kinematics.Unit]jointSpan{}
	var joints []referenceframe.JointConfig
	ext := referenceframe.DefaultExtJoint()
	for _, unit := range g.units() {
		if _, ok := spans[unit]; ok {
			continue
		}
		count := unit.JointCount()
		offset := len(joints)
		if offset+count > referenceframe.ExtJointLength {
			return errors.Errorf("external units need %d joints, at most %d are supported",
				offset+count, referenceframe.ExtJointLength)
		}
		spans[unit] = jointSpan{offset: offset, count: count}
		joints = append(joints, unit.Chain().Joints...)
		copy(ext[offset:offset+count], unit.Values())
	}

	var rob referenceframe.RobJoint
	copy(rob[:], g.robot.Values())

	g.spans = spans
	g.extJoints = joints
	g.state = referenceframe.JointTarget{Rob: rob, Ext: ext}
	g.valid = true
	return nil
}

// units returns the non-nil external units, base unit first.
func (g *MechanicalGroup) units() []kinematics.Unit {
	var out []kinematics.Unit
	if g.base != nil {
		out = append(out, g.base)
	}
	for _, unit := range g.externals {
		if unit != nil {
			out = append(out, unit)
		}
	}
	return out
}

// SetJoint changes one joint of the group. Indices 0 to 5 are robot joints. Indices 6 to 11 are
// external joints; changing one re-solves the robot so the tool center point stays put, and if
// that fails the external joint is applied anyway and the failure returned. Indices 12 to 14
// are reserved and only re-apply the state. Errors are logged unless ignoreErr is set.
func (g *MechanicalGroup) SetJoint(index int, value float64, notify, ignoreErr bool) error {
	err := g.setJoint(index, value, notify)
	if err != nil && !ignoreErr {
		g.logger.Errorw("cannot set joint", "index", index, "value", value, "error", err)
	}
	return err
}

const reservedJointIndices = 3

func (g *MechanicalGroup) setJoint(index int, value float64, notify bool) error {
	g.mu.RLock()
	jt := g.state
	retarget := g.retarget
	g.mu.RUnlock()

	switch {
	case index >= 0 && index < referenceframe.RobJointLength:
		jt.Rob[index] = value
	case index >= referenceframe.RobJointLength && index < referenceframe.JointTargetLength:
		if err := jt.Set(index, value); err != nil {
			return err
		}
		if retarget != nil {
			solved, err := retarget(jt)
			if err != nil {
				return multierr.Append(err, g.SetJoints(jt, notify))
			}
			jt = solved
		}
	case index >= referenceframe.JointTargetLength && index < referenceframe.JointTargetLength+reservedJointIndices:
	default:
		return errors.Wrapf(referenceframe.ErrIndexOutOfRange, "joint index %d", index)
	}
	return g.SetJoints(jt, notify)
}

// SetJoints replaces the joint state and pushes it to the units. Unset external values leave
// the corresponding unit joint unchanged. When a unit refuses its values every unit is put
// back, the state is kept and no change is notified.
func (g *MechanicalGroup) SetJoints(jt referenceframe.JointTarget, notify bool) error {
	g.mu.RLock()
	if !g.valid {
		g.mu.RUnlock()
		return ErrGroupInvalid
	}
	spans := g.spans
	g.mu.RUnlock()

	units := append([]kinematics.Unit{g.robot}, g.units()...)
	previous := make([][]float64, len(units))
	for i, unit := range units {
		previous[i] = unit.Values()
	}

	err := g.robot.SetValues(jt.Rob[:g.robot.JointCount()])
	for _, unit := range units[1:] {
		span, ok := spans[unit]
		if !ok {
			continue
		}
		values := unit.Values()
		for i := range values {
			if jt.Ext.IsSet(span.offset + i) {
				values[i] = jt.Ext[span.offset+i]
			}
		}
		multierr.AppendInto(&err, unit.SetValues(values))
	}
	if err != nil {
		for i, unit := range units {
			_ = unit.SetValues(previous[i])
		}
		return err
	}

	g.mu.Lock()
	g.state = jt
	g.mu.Unlock()
	if notify {
		g.notifyJointsChanged()
	}
	return nil
}

func (g *MechanicalGroup) notifyJointsChanged() {
	g.listenersMu.Lock()
	listeners := append(([]func())(nil), g.onJointsChanged...)
	g.listenersMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// ComputeForward returns the flange pose for jt in the base or world coordinate system.
func (g *MechanicalGroup) ComputeForward(jt referenceframe.JointTarget, cs CoordinateSystem) (spatialmath.Pose, error) {
	if g.robot == nil {
		return spatialmath.Pose{}, kinematics.ErrRobotNotDefined
	}
	flange, err := g.robot.ComputeForward(jt.Rob[:g.robot.JointCount()])
	if err != nil {
		return spatialmath.Pose{}, err
	}
	switch cs {
	case Base:
		return flange, nil
	case World:
		base, err := g.RobotBaseWorld(jt.Ext)
		if err != nil {
			return spatialmath.Pose{}, err
		}
		return base.Compose(flange), nil
	}
	return spatialmath.Pose{}, errors.Errorf("unsupported coordinate system %d", int(cs))
}

// ComputeForwardLive is ComputeForward on the live joint state.
func (g *MechanicalGroup) ComputeForwardLive(cs CoordinateSystem) (spatialmath.Pose, error) {
	return g.ComputeForward(g.JointState(), cs)
}

// ComputeInverse solves for a flange target given in robot base coordinates.
func (g *MechanicalGroup) ComputeInverse(
	target spatialmath.Pose,
	cfg kinematics.Configuration,
	mask kinematics.SolutionIgnoreMask,
) kinematics.IKSolution {
	if g.robot == nil {
		return kinematics.NewErrorSolution(kinematics.ErrRobotNotDefined)
	}
	return g.robot.ComputeInverse(target, cfg, mask)
}

// ComputeInverseAll returns every valid solution for a flange target in robot base coordinates.
func (g *MechanicalGroup) ComputeInverseAll(
	ctx context.Context,
	target spatialmath.Pose,
	includeTurns bool,
	mask kinematics.SolutionIgnoreMask,
) ([]kinematics.IKSolution, error) {
	if g.robot == nil {
		return nil, kinematics.ErrRobotNotDefined
	}
	return g.robot.ComputeInverseAll(ctx, target, includeTurns, mask)
}

// ConfigurationIndex returns the robot branch index of jt.
func (g *MechanicalGroup) ConfigurationIndex(jt referenceframe.JointTarget) (int, error) {
	if g.robot == nil {
		return 0, kinematics.ErrRobotNotDefined
	}
	return g.robot.ConfigurationIndex(jt.Rob[:g.robot.JointCount()])
}

// ConfigurationIndexLive returns the robot branch index of the live joint state.
func (g *MechanicalGroup) ConfigurationIndexLive() (int, error) {
	return g.ConfigurationIndex(g.JointState())
}

// UnitJointValues slices the joints owned by unit out of ext. A unit outside the group gets
// zeros.
func (g *MechanicalGroup) UnitJointValues(unit kinematics.Unit, ext referenceframe.ExtJoint) []float64 {
	g.mu.RLock()
	span, ok := g.spans[unit]
	g.mu.RUnlock()
	if !ok {
		return make([]float64, unit.JointCount())
	}
	return append([]float64(nil), ext[span.offset:span.offset+span.count]...)
}

// RobotBaseWorld returns the robot base pose in world coordinates for the external joints ext.
func (g *MechanicalGroup) RobotBaseWorld(ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	if g.base == nil {
		if g.robot == nil {
			return spatialmath.NewZeroPose(), nil
		}
		return g.robot.World(), nil
	}
	carrier, err := g.base.ComputeForward(g.UnitJointValues(g.base, ext))
	if err != nil {
		return spatialmath.Pose{}, errors.Wrapf(err, "base unit %q", g.base.Name())
	}
	return g.base.World().Compose(carrier), nil
}

// IsJointTargetValid checks every robot and external joint of jt against its limits and
// reports all violations together.
func (g *MechanicalGroup) IsJointTargetValid(jt referenceframe.JointTarget) error {
	if g.robot == nil {
		return kinematics.ErrRobotNotDefined
	}
	var errAll error
	for i, joint := range g.robot.Chain().Joints {
		if !joint.IsInRange(jt.Rob[i]) {
			multierr.AppendInto(&errAll, newJointTargetRangeError("robot", i, jt.Rob[i], joint.Limit))
		}
	}
	g.mu.RLock()
	extJoints := g.extJoints
	g.mu.RUnlock()
	for i, joint := range extJoints {
		if !joint.IsInRange(jt.Ext[i]) {
			multierr.AppendInto(&errAll, newJointTargetRangeError("external", i, jt.Ext[i], joint.Limit))
		}
	}
	return errors.Wrap(errAll, "joint target is not valid")
}

// SaveState remembers the live joint state.
func (g *MechanicalGroup) SaveState() {
	g.mu.Lock()
	g.saved = g.state
	g.mu.Unlock()
}

// LoadState applies the state stored by SaveState and notifies listeners.
func (g *MechanicalGroup) LoadState() error {
	g.mu.RLock()
	saved := g.saved
	g.mu.RUnlock()
	return g.SetJoints(saved, true)
}

// WorldFrame returns the robot base pose for the live joint state.
func (g *MechanicalGroup) WorldFrame() (spatialmath.Pose, error) {
	return g.RobotBaseWorld(g.JointState().Ext)
}

// WorldFrameAt returns the robot base pose for the external joints ext.
func (g *MechanicalGroup) WorldFrameAt(_ *MechanicalGroup, ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	return g.RobotBaseWorld(ext)
}
