package controller

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// Solver converts cartesian targets between world, reference frame and tool coordinates and the
// robot base, and applies solutions to the controller's group.
type Solver struct {
	logger logging.Logger
	c      *Controller
}

func newSolver(logger logging.Logger, c *Controller) *Solver {
	return &Solver{logger: logger, c: c}
}

// ComputeForward returns the tool center point of the tool at index in world coordinates.
func (s *Solver) ComputeForward(jt referenceframe.JointTarget, tool int) (spatialmath.Pose, error) {
	flange, err := s.c.group.ComputeForward(jt, World)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return s.c.AddToolOffset(flange, tool), nil
}

// ComputeForwardBase returns the flange pose in robot base coordinates.
func (s *Solver) ComputeForwardBase(jt referenceframe.JointTarget) (spatialmath.Pose, error) {
	return s.c.group.ComputeForward(jt, Base)
}

// ComputeInverse solves for a tool center point target in world coordinates with the external
// joints at ext. The solution carries ext.
func (s *Solver) ComputeInverse(
	target spatialmath.Pose,
	tool int,
	cfg kinematics.Configuration,
	ext referenceframe.ExtJoint,
	mask kinematics.SolutionIgnoreMask,
) kinematics.IKSolution {
	flange, err := s.flangeInBase(target, tool, ext)
	if err != nil {
		return kinematics.NewErrorSolution(err).WithExternalJoints(ext)
	}
	return s.c.group.ComputeInverse(flange, cfg, mask).WithExternalJoints(ext)
}

// ComputeInverseTarget solves for a target expressed in the frame at index.
func (s *Solver) ComputeInverseTarget(
	target CartesianTarget,
	tool, frame int,
	mask kinematics.SolutionIgnoreMask,
) kinematics.IKSolution {
	world, err := s.c.FrameToWorld(target.Pose, frame, target.ExtJoint)
	if err != nil {
		return kinematics.NewErrorSolution(err).WithExternalJoints(target.ExtJoint)
	}
	return s.ComputeInverse(world, tool, target.Configuration, target.ExtJoint, mask)
}

// AllSolutions returns every valid solution for a target expressed in the frame at index. The
// target's configuration is ignored.
func (s *Solver) AllSolutions(
	ctx context.Context,
	target CartesianTarget,
	tool, frame int,
	includeTurns bool,
	mask kinematics.SolutionIgnoreMask,
) ([]kinematics.IKSolution, error) {
	world, err := s.c.FrameToWorld(target.Pose, frame, target.ExtJoint)
	if err != nil {
		return nil, err
	}
	flange, err := s.flangeInBase(world, tool, target.ExtJoint)
	if err != nil {
		return nil, err
	}
	solutions, err := s.c.group.ComputeInverseAll(ctx, flange, includeTurns, mask)
	if err != nil {
		return nil, err
	}
	return lo.Map(solutions, func(sol kinematics.IKSolution, _ int) kinematics.IKSolution {
		return sol.WithExternalJoints(target.ExtJoint)
	}), nil
}

// flangeInBase maps a world tool center point target to a flange target in robot base
// coordinates.
func (s *Solver) flangeInBase(target spatialmath.Pose, tool int, ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	base, err := s.c.group.RobotBaseWorld(ext)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return s.c.RemoveToolOffset(base.Inverse().Compose(target), tool), nil
}

// TryJumpToTarget solves for a tool center point target given in the active frame with the
// active tool, configuration and external joints, and applies the result.
func (s *Solver) TryJumpToTarget(target spatialmath.Pose, mask kinematics.SolutionIgnoreMask, log bool) bool {
	ext := s.c.group.JointState().Ext
	world, err := s.c.FrameToWorld(target, s.c.Frame(), ext)
	if err != nil {
		if log {
			s.logger.Errorw("cannot jump to target", "error", err)
		}
		return false
	}
	sol := s.ComputeInverse(world, s.c.Tool(), s.c.Configuration(), ext, mask)
	return s.TryApplySolution(sol, log)
}

// TryApplySolution makes sol the controller's configuration and joint state. It refuses invalid
// solutions and invalid controllers, logging why when log is set.
func (s *Solver) TryApplySolution(sol kinematics.IKSolution, log bool) bool {
	if err := s.applySolution(sol); err != nil {
		if log {
			s.logger.Errorw("cannot apply solution", "solution", sol.Label(), "error", err)
		}
		return false
	}
	return true
}

func (s *Solver) applySolution(sol kinematics.IKSolution) error {
	if !s.c.IsValid() {
		return ErrControllerInvalid
	}
	if !sol.IsValid() {
		if sol.Err != nil {
			return sol.Err
		}
		return errors.Errorf("solution is %s", sol.State)
	}
	if err := s.c.group.SetJoints(sol.JointTarget, true); err != nil {
		return err
	}
	s.c.SetConfiguration(sol.Configuration)
	return nil
}

// Configuration returns the active configuration with the branch index of the live joint
// state.
func (s *Solver) Configuration() (kinematics.Configuration, error) {
	return s.ConfigurationFor(s.c.group.JointState())
}

// ConfigurationFor returns the active configuration with the branch index of jt.
func (s *Solver) ConfigurationFor(jt referenceframe.JointTarget) (kinematics.Configuration, error) {
	index, err := s.c.group.ConfigurationIndex(jt)
	if err != nil {
		return kinematics.Configuration{}, err
	}
	return s.c.Configuration().WithIndex(index), nil
}
