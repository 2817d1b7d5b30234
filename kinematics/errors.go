package kinematics

import "github.com/pkg/errors"

var (
	// ErrTargetNotReachable is carried by solutions whose algebra produced NaN.
	ErrTargetNotReachable = errors.New("target is not reachable")
	// ErrNoSolution is returned by closed-form forward solutions with no real root.
	ErrNoSolution = errors.New("no solution")
	// ErrSingularity is carried by solutions inside the wrist singularity range.
	ErrSingularity = errors.New("joint 5 is in singularity range")
	// ErrRobotNotDefined is returned when an operation needs a robot and none is set.
	ErrRobotNotDefined = errors.New("robot is not defined")
	// ErrBranchOutOfRange is carried by solutions requested for a branch the robot lacks.
	ErrBranchOutOfRange = errors.New("configuration index out of range")
	// ErrZeroFactor is returned for a joint whose factor would collapse every value to its offset.
	ErrZeroFactor = errors.New("joint factor must not be zero")
)
