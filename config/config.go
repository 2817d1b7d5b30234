// Package config describes a robot cell as a JSON document and builds a controller from it.
package config

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/flange/controller"
	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// Config describes a robot, the units moving or surrounding it, its tools and user frames.
type Config struct {
	ConfigFilePath string `json:"-"`

	Name      string        `json:"name,omitempty"`
	Robot     RobotConfig   `json:"robot"`
	Base      *UnitConfig   `json:"base,omitempty"`
	Externals []UnitConfig  `json:"externals,omitempty"`
	Tools     []ToolConfig  `json:"tools,omitempty"`
	Frames    []FrameConfig `json:"frames,omitempty"`
}

// Translation is a position in metres.
type Translation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector returns t as an r3.Vector.
func (t Translation) Vector() r3.Vector {
	return r3.Vector{X: t.X, Y: t.Y, Z: t.Z}
}

// Euler holds rotations in degrees about X, Y and Z, applied in Y, X, Z order.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PoseConfig is a pose given as a translation and Euler angles. It may also be written as an
// array [x, y, z, rx, ry, rz].
type PoseConfig struct {
	Translation Translation `json:"translation"`
	Euler       Euler       `json:"euler"`
}

// Pose returns the configured pose.
func (p PoseConfig) Pose() spatialmath.Pose {
	return spatialmath.NewPoseFromEuler(p.Translation.Vector(), r3.Vector{X: p.Euler.X, Y: p.Euler.Y, Z: p.Euler.Z})
}

// UnitConfig is one mechanical unit: its geometry, where it stands and its initial joint values.
type UnitConfig struct {
	Name           string                         `json:"name"`
	Frames         []referenceframe.FrameConfig   `json:"frames"`
	Joints         []referenceframe.JointConfig   `json:"joints"`
	CartesianLimit *referenceframe.CartesianLimit `json:"cartesian_limit,omitempty"`
	World          PoseConfig                     `json:"world"`
	Values         []float64                      `json:"values,omitempty"`
}

// Mechanical returns the serializable geometry of the unit.
func (u UnitConfig) Mechanical() referenceframe.MechanicalUnitConfig {
	return referenceframe.MechanicalUnitConfig{
		Frames:         u.Frames,
		Joints:         u.Joints,
		CartesianLimit: u.CartesianLimit,
	}
}

// Validate ensures the unit is well formed.
func (u UnitConfig) Validate(path string) error {
	var err error
	if u.Name == "" {
		err = multierr.Append(err, newFieldRequiredError(path, "name"))
	}
	if len(u.Joints) == 0 {
		err = multierr.Append(err, newFieldRequiredError(path, "joints"))
	}
	if chainErr := u.Mechanical().Chain().Validate(); chainErr != nil {
		err = multierr.Append(err, newValidationError(path, chainErr))
	}
	for i, joint := range u.Joints {
		if joint.Limit.Min > joint.Limit.Max {
			err = multierr.Append(err, newValidationError(fmt.Sprintf("%s.joints.%d", path, i),
				errors.Errorf("limit min %v is greater than max %v", joint.Limit.Min, joint.Limit.Max)))
		}
		if joint.Factor == 0 {
			err = multierr.Append(err, newFieldRequiredError(fmt.Sprintf("%s.joints.%d", path, i), "factor"))
		}
	}
	if len(u.Values) > len(u.Joints) {
		err = multierr.Append(err, newValidationError(path,
			referenceframe.NewIncorrectInputLengthError(len(u.Values), len(u.Joints))))
	}
	return err
}

// RobotConfig is the unit carrying the tool, plus the architecture that solves it.
type RobotConfig struct {
	Kind       string `json:"kind" jsonschema:"enum=offset_wrist,enum=spherical_wrist,enum=scara,enum=delta"`
	UnitConfig `json:",squash"`
}

// ToolConfig is a tool offset relative to the flange.
type ToolConfig struct {
	Name   string               `json:"name"`
	Mount  controller.MountType `json:"mount,omitempty" jsonschema:"type=string,enum=on_robot,enum=extern"`
	Offset PoseConfig           `json:"offset"`
}

// FrameConfig is a user reference frame, fixed in the world or carried by the unit named Unit.
type FrameConfig struct {
	Name  string     `json:"name"`
	World PoseConfig `json:"world"`
	Unit  string     `json:"unit,omitempty"`
	Local PoseConfig `json:"local"`
}

// Validate ensures all parts of the config are valid. Every problem found is returned.
func (c *Config) Validate() error {
	var err error
	switch c.Robot.Kind {
	case kinematics.OffsetWristKind, kinematics.SphericalWristKind, kinematics.ScaraKind, kinematics.DeltaKind:
	case "":
		err = multierr.Append(err, newFieldRequiredError("robot", "kind"))
	default:
		err = multierr.Append(err, newValidationError("robot", errors.Errorf("unknown robot kind %q", c.Robot.Kind)))
	}
	err = multierr.Append(err, c.Robot.Validate("robot"))

	units := map[string]bool{c.Robot.Name: true}
	extJoints := 0
	checkUnit := func(path string, u UnitConfig) {
		err = multierr.Append(err, u.Validate(path))
		if units[u.Name] {
			err = multierr.Append(err, newValidationError(path, errors.Errorf("duplicate unit name %q", u.Name)))
		}
		units[u.Name] = true
		extJoints += len(u.Joints)
	}
	if c.Base != nil {
		checkUnit("base", *c.Base)
	}
	for i, u := range c.Externals {
		checkUnit(fmt.Sprintf("externals.%d", i), u)
	}
	if extJoints > referenceframe.ExtJointLength {
		err = multierr.Append(err, errors.Errorf("external units have %d joints, at most %d are supported",
			extJoints, referenceframe.ExtJointLength))
	}

	for i, tool := range c.Tools {
		if tool.Name == "" {
			err = multierr.Append(err, newFieldRequiredError(fmt.Sprintf("tools.%d", i), "name"))
		}
	}
	frames := map[string]bool{}
	for i, frame := range c.Frames {
		path := fmt.Sprintf("frames.%d", i)
		if frame.Name == "" {
			err = multierr.Append(err, newFieldRequiredError(path, "name"))
		} else if frames[frame.Name] {
			err = multierr.Append(err, newValidationError(path, errors.Errorf("duplicate frame name %q", frame.Name)))
		}
		frames[frame.Name] = true
		if frame.Unit != "" && !units[frame.Unit] {
			err = multierr.Append(err, newValidationError(path, errors.Errorf("unknown unit %q", frame.Unit)))
		}
	}
	return err
}

func newFieldRequiredError(path, field string) error {
	return errors.Errorf("error validating %q: %q is required", path, field)
}

func newValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}
