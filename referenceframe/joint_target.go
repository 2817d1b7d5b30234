package referenceframe

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/flange/spatialmath"
)

const (
	// RobJointLength is the number of robot joints in a JointTarget.
	RobJointLength = 6
	// ExtJointLength is the number of external joints in a JointTarget.
	ExtJointLength = 6
	// JointTargetLength is the total number of joints in a JointTarget.
	JointTargetLength = RobJointLength + ExtJointLength
)

// RobJoint holds the robot joint values. The zero value is all joints at zero.
type RobJoint [RobJointLength]float64

// ExtJoint holds external axis values. spatialmath.FloatMax marks an unset axis.
type ExtJoint [ExtJointLength]float64

// DefaultExtJoint returns an ExtJoint with every axis unset.
func DefaultExtJoint() ExtJoint {
	var e ExtJoint
	for i := range e {
		e[i] = spatialmath.FloatMax
	}
	return e
}

// IsSet reports whether axis i carries a value.
func (e ExtJoint) IsSet(i int) bool {
	return i >= 0 && i < ExtJointLength && e[i] != spatialmath.FloatMax
}

func (r RobJoint) String() string {
	return joinValues(r[:])
}

func (e ExtJoint) String() string {
	return joinValues(e[:])
}

func joinValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return strings.Join(parts, ", ")
}

// JointTarget is the joint-space position of a robot and its external axes. Arrays copy on
// assignment, so a JointTarget passed by value is independent of its source.
type JointTarget struct {
	Rob RobJoint
	Ext ExtJoint
}

// NewJointTarget fills robot joints then external joints from values. External joints not
// given are unset.
func NewJointTarget(values ...float64) (JointTarget, error) {
	if len(values) > JointTargetLength {
		return JointTarget{}, errors.Wrapf(ErrIndexOutOfRange, "%d values for a %d joint target", len(values), JointTargetLength)
	}
	jt := DefaultJointTarget()
	for i, v := range values {
		if err := jt.Set(i, v); err != nil {
			return JointTarget{}, err
		}
	}
	return jt, nil
}

// DefaultJointTarget has robot joints at zero and external joints unset.
func DefaultJointTarget() JointTarget {
	return JointTarget{Ext: DefaultExtJoint()}
}

// NullJointTarget has every joint at zero.
func NullJointTarget() JointTarget {
	return JointTarget{}
}

// At returns joint i, robot joints first.
func (jt JointTarget) At(i int) (float64, error) {
	switch {
	case i >= 0 && i < RobJointLength:
		return jt.Rob[i], nil
	case i >= RobJointLength && i < JointTargetLength:
		return jt.Ext[i-RobJointLength], nil
	}
	return 0, errors.Wrapf(ErrIndexOutOfRange, "joint target index %d", i)
}

// Set assigns joint i, robot joints first.
func (jt *JointTarget) Set(i int, v float64) error {
	switch {
	case i >= 0 && i < RobJointLength:
		jt.Rob[i] = v
	case i >= RobJointLength && i < JointTargetLength:
		jt.Ext[i-RobJointLength] = v
	default:
		return errors.Wrapf(ErrIndexOutOfRange, "joint target index %d", i)
	}
	return nil
}

// Values returns all twelve values.
func (jt JointTarget) Values() []float64 {
	out := make([]float64, 0, JointTargetLength)
	out = append(out, jt.Rob[:]...)
	return append(out, jt.Ext[:]...)
}

// ApplyTurns adds whole turns to joints 1, 4 and 6.
func (jt JointTarget) ApplyTurns(turn1, turn4, turn6 int) JointTarget {
	jt.Rob[0] += 360 * float64(turn1)
	jt.Rob[3] += 360 * float64(turn4)
	jt.Rob[5] += 360 * float64(turn6)
	return jt
}

// WithExt returns a copy with the external joints replaced.
func (jt JointTarget) WithExt(ext ExtJoint) JointTarget {
	jt.Ext = ext
	return jt
}

func (jt JointTarget) String() string {
	return fmt.Sprintf("[%s] [%s]", jt.Rob, jt.Ext)
}
