package kinematics

import (
	"fmt"

	"go.uber.org/multierr"

	"go.viam.com/flange/referenceframe"
)

// SolutionIgnoreMask disables individual checks while building a solution.
type SolutionIgnoreMask int

// Mask flags. IgnoreLimits is accepted but joint limits are always enforced.
const (
	IgnoreNone        SolutionIgnoreMask = 0
	IgnoreLimits      SolutionIgnoreMask = 1
	IgnoreSingularity SolutionIgnoreMask = 2
	IgnoreAll         SolutionIgnoreMask = ^0
)

// Has reports whether flag is set.
func (m SolutionIgnoreMask) Has(flag SolutionIgnoreMask) bool {
	return m&flag != 0
}

// SolutionState tracks whether a solution has been checked against joint limits.
type SolutionState int

// Solution states.
const (
	SolutionUnknown SolutionState = iota
	SolutionValid
	SolutionError
)

func (s SolutionState) String() string {
	switch s {
	case SolutionUnknown:
		return "unknown"
	case SolutionValid:
		return "valid"
	case SolutionError:
		return "error"
	}
	return fmt.Sprintf("SolutionState(%d)", int(s))
}

// IKSolution is one inverse kinematics result. Only a solution in the Valid state may be
// applied; Err describes why a solution is in the Error state.
type IKSolution struct {
	JointTarget   referenceframe.JointTarget
	Configuration Configuration
	State         SolutionState
	Err           error
}

// NewIKSolution adds the turns of cfg to jt and returns an unvalidated solution.
func NewIKSolution(jt referenceframe.JointTarget, cfg Configuration) IKSolution {
	return IKSolution{
		JointTarget:   jt.ApplyTurns(cfg.Turn1, cfg.Turn4, cfg.Turn6),
		Configuration: cfg,
		State:         SolutionUnknown,
	}
}

// NewErrorSolution returns a solution in the Error state.
func NewErrorSolution(err error) IKSolution {
	return IKSolution{
		JointTarget: referenceframe.DefaultJointTarget(),
		State:       SolutionError,
		Err:         err,
	}
}

// NaNSolution is the result for an unreachable target.
func NaNSolution() IKSolution {
	return NewErrorSolution(ErrTargetNotReachable)
}

// Validate checks every robot joint against joints and sets the state. All violations are
// reported together.
func (s *IKSolution) Validate(joints []referenceframe.JointConfig) {
	var errAll error
	for i, joint := range joints {
		if i >= referenceframe.RobJointLength {
			break
		}
		multierr.AppendInto(&errAll, joint.CheckRange(i, s.JointTarget.Rob[i]))
	}
	if errAll != nil {
		s.State = SolutionError
		s.Err = errAll
		return
	}
	s.State = SolutionValid
	s.Err = nil
}

// IsValid reports whether the solution passed validation.
func (s IKSolution) IsValid() bool {
	return s.State == SolutionValid
}

// WithExternalJoints returns a copy carrying ext as its external joints.
func (s IKSolution) WithExternalJoints(ext referenceframe.ExtJoint) IKSolution {
	s.JointTarget = s.JointTarget.WithExt(ext)
	return s
}

// Label is a short human readable description.
func (s IKSolution) Label() string {
	return fmt.Sprintf("C:[%s] R:[%s]", s.Configuration, s.JointTarget.Rob)
}

func (s IKSolution) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s %s: %v", s.JointTarget, s.State, s.Err)
	}
	return fmt.Sprintf("%s %s", s.JointTarget, s.State)
}
