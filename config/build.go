package config

import (
	"github.com/pkg/errors"

	"go.viam.com/flange/controller"
	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
)

// Build validates the config and constructs the controller it describes. Units start at their
// configured values; the robot defaults to all zeros.
func (c *Config) Build(logger logging.Logger) (*controller.Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	robot, err := kinematics.NewRobot(c.Robot.Kind, c.Robot.Name, c.Robot.Mechanical(), c.Robot.World.Pose())
	if err != nil {
		return nil, errors.Wrap(err, "cannot build robot")
	}
	if err := setValues(robot, c.Robot.Values); err != nil {
		return nil, err
	}

	units := map[string]kinematics.Unit{robot.Name(): robot}
	var base kinematics.Unit
	if c.Base != nil {
		if base, err = buildUnit(*c.Base); err != nil {
			return nil, err
		}
		units[base.Name()] = base
	}
	externals := make([]kinematics.Unit, 0, len(c.Externals))
	for _, uc := range c.Externals {
		unit, err := buildUnit(uc)
		if err != nil {
			return nil, err
		}
		units[unit.Name()] = unit
		externals = append(externals, unit)
	}

	tools := make([]controller.Tool, 0, len(c.Tools))
	for _, tc := range c.Tools {
		tools = append(tools, controller.NewTool(tc.Name, tc.Mount, tc.Offset.Pose()))
	}
	frames := make([]controller.ReferenceFrame, 0, len(c.Frames))
	for _, fc := range c.Frames {
		if fc.Unit == "" {
			frames = append(frames, controller.NewStaticReferenceFrame(fc.Name, fc.World.Pose()))
			continue
		}
		frames = append(frames, controller.NewMountedReferenceFrame(fc.Name, units[fc.Unit], fc.Local.Pose()))
	}

	if c.Name != "" {
		logger = logger.With("cell", c.Name)
	}
	logger.Debugw("building controller", "robot", robot.Name(), "kind", robot.Kind(),
		"externals", len(externals), "tools", len(tools), "frames", len(frames))
	group := controller.NewMechanicalGroup(logger.Sublogger("group"), robot, base, externals...)
	return controller.NewController(logger, group, tools, frames)
}

func buildUnit(uc UnitConfig) (kinematics.Unit, error) {
	unit, err := kinematics.NewMechanicalUnit(uc.Name, uc.Mechanical(), uc.World.Pose())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build unit %q", uc.Name)
	}
	if err := setValues(unit, uc.Values); err != nil {
		return nil, err
	}
	return unit, nil
}

func setValues(unit kinematics.Unit, values []float64) error {
	if len(values) == 0 {
		return nil
	}
	full := unit.Values()
	copy(full, values)
	return errors.Wrapf(unit.SetValues(full), "cannot set initial values of %q", unit.Name())
}
