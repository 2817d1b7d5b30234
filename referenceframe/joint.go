package referenceframe

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/flange/spatialmath"
)

// JointType is the kind of motion a joint produces.
type JointType int

// The supported joint types.
const (
	Rotary JointType = iota
	Prismatic
)

func (jt JointType) String() string {
	switch jt {
	case Rotary:
		return "rotary"
	case Prismatic:
		return "prismatic"
	}
	return fmt.Sprintf("JointType(%d)", int(jt))
}

// MarshalText implements encoding.TextMarshaler.
func (jt JointType) MarshalText() ([]byte, error) {
	if jt != Rotary && jt != Prismatic {
		return nil, errors.Wrapf(ErrUnknownJointType, "%d", int(jt))
	}
	return []byte(jt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "revolute" and "linear" are accepted as
// aliases.
func (jt *JointType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "rotary", "revolute":
		*jt = Rotary
	case "prismatic", "linear":
		*jt = Prismatic
	default:
		return errors.Wrapf(ErrUnknownJointType, "%q", string(text))
	}
	return nil
}

// Limit is the closed range of motion of a joint, in degrees or metres.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (l Limit) String() string {
	return fmt.Sprintf("[%v, %v]", l.Min, l.Max)
}

// Span returns Max - Min.
func (l Limit) Span() float64 {
	return l.Max - l.Min
}

// JointConfig is the static configuration of one joint.
type JointConfig struct {
	Name     string    `json:"name,omitempty"`
	Type     JointType `json:"type"`
	Limit    Limit     `json:"limit"`
	Offset   float64   `json:"offset"`
	Factor   float64   `json:"factor"`
	SpeedMax float64   `json:"speed_max"`
	AccMax   float64   `json:"acc_max"`
}

// DefaultJointConfig returns a rotary joint limited to ±180°.
func DefaultJointConfig() JointConfig {
	return JointConfig{
		Type:     Rotary,
		Limit:    Limit{Min: -180, Max: 180},
		Factor:   1,
		SpeedMax: 100,
		AccMax:   500,
	}
}

// Clamp limits v to the joint range.
func (j JointConfig) Clamp(v float64) float64 {
	return math.Min(math.Max(v, j.Limit.Min), j.Limit.Max)
}

// ValidValue maps a raw joint value onto the value fed to the link transform:
// Offset + clamp(v)·Factor.
func (j JointConfig) ValidValue(v float64) float64 {
	return j.Offset + j.Clamp(v)*j.Factor
}

// IsInRange reports whether v lies within the joint limits, inclusive.
func (j JointConfig) IsInRange(v float64) bool {
	return v >= j.Limit.Min && v <= j.Limit.Max
}

// CheckRange returns an out-of-range error naming joint index when v is outside the limits.
func (j JointConfig) CheckRange(index int, v float64) error {
	if j.IsInRange(v) {
		return nil
	}
	return NewJointOutOfRangeError(index, v, j.Limit)
}

// JointTransform returns the link transform of cfg driven by joint at the raw value. Rotary
// values are degrees and prismatic values metres.
func JointTransform(cfg FrameConfig, joint JointConfig, value float64) (spatialmath.Pose, error) {
	v := joint.ValidValue(value)
	switch joint.Type {
	case Rotary:
		return NewDHTransform(cfg, spatialmath.DegToRad(v), 0), nil
	case Prismatic:
		return NewDHTransform(cfg, 0, v), nil
	}
	return spatialmath.Pose{}, errors.Wrapf(ErrUnknownJointType, "%s", joint.Type)
}
