package kinematics

import (
	"context"
	"math"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// ScaraKind names the SCARA architecture.
const ScaraKind = "scara"

// ScaraRobot is a four axis R-R-P-R arm: two planar links, a vertical stroke and a tool
// rotation. Its chain has a base frame, four joint frames and a flange frame.
type ScaraRobot struct {
	*MechanicalUnit
}

// NewScaraRobot validates the chain shape and returns the robot.
func NewScaraRobot(name string, cfg referenceframe.MechanicalUnitConfig, world spatialmath.Pose) (*ScaraRobot, error) {
	if err := checkShape(ScaraKind, cfg, 6, 4); err != nil {
		return nil, err
	}
	unit, err := NewMechanicalUnit(name, cfg, world)
	if err != nil {
		return nil, err
	}
	return &ScaraRobot{unit}, nil
}

// Kind returns ScaraKind.
func (r *ScaraRobot) Kind() string {
	return ScaraKind
}

// BranchCount returns 2: elbow on either side.
func (r *ScaraRobot) BranchCount() int {
	return 2
}

// ComputeInverse solves the planar two link triangle, the stroke and the residual yaw.
func (r *ScaraRobot) ComputeInverse(target spatialmath.Pose, cfg Configuration, mask SolutionIgnoreMask) IKSolution {
	if sol, ok := checkBranch(r, cfg); !ok {
		return sol
	}
	chain := r.Chain()
	f := chain.Frames
	p := target.Point()
	l1, l2 := f[1].A, f[2].A
	theta := make([]float64, 4)

	a := p.X*p.X + p.Z*p.Z - l1*l1 - l2*l2
	theta[1] = spatialmath.Acos(a / (2 * l1 * l2))
	if cfg.Index == 1 {
		theta[1] = -theta[1]
	}
	s2, c2 := math.Sincos(theta[1])
	theta[0] = math.Atan2(p.Z, p.X) - math.Atan2(l1+l2*c2, l2*s2)
	theta[2] = p.Y - f[1].D
	theta[3] = theta[0] - theta[1] - math.Atan2(target.At(2, 0), target.At(0, 0))

	return createSolution(chain.Joints, theta, cfg, mask, solutionOptions{})
}

// ComputeInverseAll enumerates both elbow branches.
func (r *ScaraRobot) ComputeInverseAll(
	ctx context.Context, target spatialmath.Pose, includeTurns bool, mask SolutionIgnoreMask,
) ([]IKSolution, error) {
	return computeInverseAll(ctx, r, target, includeTurns, mask)
}

// ConfigurationIndex is 1 when the elbow joint is negative.
func (r *ScaraRobot) ConfigurationIndex(values []float64) (int, error) {
	if len(values) < 2 {
		return 0, referenceframe.NewIncorrectInputLengthError(len(values), r.JointCount())
	}
	if values[1] < 0 {
		return 1, nil
	}
	return 0, nil
}
