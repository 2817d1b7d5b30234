package main

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/flange/config"
	"go.viam.com/flange/controller"
	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

func loadController(c *cli.Context, logger logging.Logger) (*controller.Controller, error) {
	cfg, err := config.Read(c.String(flagConfig), logger)
	if err != nil {
		return nil, err
	}
	return cfg.Build(logger)
}

// extJoints returns the live external joints, overridden by the --ext flag.
func extJoints(c *cli.Context, ctrl *controller.Controller) (referenceframe.ExtJoint, error) {
	ext := ctrl.Group().JointState().Ext
	values := c.Float64Slice(flagExt)
	if len(values) > referenceframe.ExtJointLength {
		return ext, referenceframe.NewIncorrectInputLengthError(len(values), referenceframe.ExtJointLength)
	}
	copy(ext[:], values)
	return ext, nil
}

func targetPose(c *cli.Context) (spatialmath.Pose, error) {
	v := c.Float64Slice(flagPose)
	if len(v) != 6 {
		return spatialmath.Pose{}, errors.Errorf("pose needs 6 values x,y,z,rx,ry,rz, got %d", len(v))
	}
	return spatialmath.NewPoseFromEuler(r3.Vector{X: v[0], Y: v[1], Z: v[2]}, r3.Vector{X: v[3], Y: v[4], Z: v[5]}), nil
}

func ignoreMask(c *cli.Context) kinematics.SolutionIgnoreMask {
	if c.Bool(flagIgnoreSingularity) {
		return kinematics.IgnoreSingularity
	}
	return kinematics.IgnoreNone
}

func printPose(c *cli.Context, pose spatialmath.Pose) {
	p, e := pose.Point(), pose.Euler()
	fmt.Fprintf(c.App.Writer, "position: %.4f %.4f %.4f\nrotation: %.3f %.3f %.3f\n", p.X, p.Y, p.Z, e.X, e.Y, e.Z)
}

func forwardAction(c *cli.Context, logger logging.Logger) error {
	ctrl, err := loadController(c, logger)
	if err != nil {
		return err
	}
	jt := ctrl.Group().JointState()
	joints := c.Float64Slice(flagJoints)
	if len(joints) > referenceframe.RobJointLength {
		return referenceframe.NewIncorrectInputLengthError(len(joints), referenceframe.RobJointLength)
	}
	copy(jt.Rob[:], joints)
	if jt.Ext, err = extJoints(c, ctrl); err != nil {
		return err
	}
	if err := ctrl.Group().IsJointTargetValid(jt); err != nil {
		return err
	}
	pose, err := ctrl.Solver().ComputeForward(jt, c.Int(flagTool))
	if err != nil {
		return err
	}
	printPose(c, pose)
	return nil
}

func inverseAction(c *cli.Context, logger logging.Logger) error {
	ctrl, err := loadController(c, logger)
	if err != nil {
		return err
	}
	pose, err := targetPose(c)
	if err != nil {
		return err
	}
	ext, err := extJoints(c, ctrl)
	if err != nil {
		return err
	}
	cfg := kinematics.Configuration{Index: c.Int(flagIndex)}
	turns := c.IntSlice(flagTurns)
	if len(turns) > 3 {
		return errors.Errorf("turns needs at most 3 values, got %d", len(turns))
	}
	for i, t := range turns {
		switch i {
		case 0:
			cfg.Turn1 = t
		case 1:
			cfg.Turn4 = t
		case 2:
			cfg.Turn6 = t
		}
	}

	target := controller.NewCartesianTarget(pose, cfg, ext)
	sol := ctrl.Solver().ComputeInverseTarget(target, c.Int(flagTool), c.Int(flagFrame), ignoreMask(c))
	if !sol.IsValid() {
		return errors.Wrapf(sol.Err, "no solution for configuration %s", cfg)
	}
	fmt.Fprintln(c.App.Writer, sol.Label())
	return nil
}

func solutionsAction(c *cli.Context, logger logging.Logger) error {
	ctrl, err := loadController(c, logger)
	if err != nil {
		return err
	}
	pose, err := targetPose(c)
	if err != nil {
		return err
	}
	ext, err := extJoints(c, ctrl)
	if err != nil {
		return err
	}
	target := controller.NewCartesianTarget(pose, kinematics.Configuration{}, ext)
	solutions, err := ctrl.Solver().AllSolutions(c.Context, target, c.Int(flagTool), c.Int(flagFrame),
		c.Bool(flagIncludeTurns), ignoreMask(c))
	if err != nil {
		return err
	}
	if len(solutions) == 0 {
		return kinematics.ErrTargetNotReachable
	}
	for _, sol := range solutions {
		fmt.Fprintln(c.App.Writer, sol.Label())
	}
	return nil
}

func validateAction(c *cli.Context, logger logging.Logger) error {
	ctrl, err := loadController(c, logger)
	if err != nil {
		return err
	}
	group := ctrl.Group()
	fmt.Fprintf(c.App.Writer, "%s robot %q with %d external units, %d tools and %d frames is valid\n",
		group.Robot().Kind(), group.Name(), len(group.ExternalUnits()), len(ctrl.Tools()), len(ctrl.Frames()))
	return nil
}

func schemaAction(c *cli.Context) error {
	out, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}
