package kinematics

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// Robot is a mechanical unit with an analytic inverse kinematics solution.
type Robot interface {
	Unit

	// Kind names the robot architecture.
	Kind() string
	// ComputeInverse solves for the flange pose target, given in base coordinates, on the
	// branch and turns selected by cfg. Unreachable targets yield a solution in the Error
	// state rather than an error.
	ComputeInverse(target spatialmath.Pose, cfg Configuration, mask SolutionIgnoreMask) IKSolution
	// ComputeInverseAll returns every valid solution for target ordered by branch index and,
	// when includeTurns is set, by turns of joints 1, 4 and 6.
	ComputeInverseAll(ctx context.Context, target spatialmath.Pose, includeTurns bool, mask SolutionIgnoreMask) ([]IKSolution, error)
	// ConfigurationIndex returns the branch index that reproduces values.
	ConfigurationIndex(values []float64) (int, error)
	// BranchCount is the number of analytic branches.
	BranchCount() int
	CartesianLimit() referenceframe.CartesianLimit
}

// solutionOptions selects the architecture specific steps of createSolution.
type solutionOptions struct {
	subtractOffsets  bool
	checkSingularity bool
}

// solutionDigits is the precision joint values are rounded to before the range check, so a
// value exactly on a limit does not fail on floating point noise.
const solutionDigits = 3

// createSolution turns raw joint values in radians (rotary) or metres (prismatic) into a
// validated solution.
func createSolution(
	joints []referenceframe.JointConfig,
	theta []float64,
	cfg Configuration,
	mask SolutionIgnoreMask,
	opts solutionOptions,
) IKSolution {
	if lo.SomeBy(theta, math.IsNaN) {
		return NaNSolution()
	}
	if len(theta) > len(joints) || len(theta) > referenceframe.RobJointLength {
		return NewErrorSolution(referenceframe.NewIncorrectInputLengthError(len(theta), len(joints)))
	}

	jt := referenceframe.DefaultJointTarget()
	var errAll error
	for i, v := range theta {
		joint := joints[i]
		if joint.Type == referenceframe.Rotary {
			v = spatialmath.RadToDeg(v)
		}
		if opts.subtractOffsets {
			v -= joint.Offset
		}
		v = spatialmath.Round(v, solutionDigits)
		multierr.AppendInto(&errAll, joint.CheckRange(i, v))
		jt.Rob[i] = v
	}
	if errAll != nil {
		return NewErrorSolution(errAll)
	}
	if opts.checkSingularity && !mask.Has(IgnoreSingularity) &&
		math.Abs(jt.Rob[4]) < spatialmath.SingularityAngleLimit {
		return NewErrorSolution(ErrSingularity)
	}

	sol := NewIKSolution(jt, cfg)
	sol.Validate(joints)
	return sol
}

// checkBranch returns an error solution when cfg selects a branch the robot lacks.
func checkBranch(r Robot, cfg Configuration) (IKSolution, bool) {
	if cfg.Index < 0 || cfg.Index >= r.BranchCount() {
		return NewErrorSolution(errors.Wrapf(ErrBranchOutOfRange, "index %d of %d", cfg.Index, r.BranchCount())), false
	}
	return IKSolution{}, true
}

// computeInverseAll evaluates each branch concurrently. Output order does not depend on
// scheduling.
func computeInverseAll(
	ctx context.Context,
	r Robot,
	target spatialmath.Pose,
	includeTurns bool,
	mask SolutionIgnoreMask,
) ([]IKSolution, error) {
	joints := r.Chain().Joints
	branches := make([][]IKSolution, r.BranchCount())

	g, ctx := errgroup.WithContext(ctx)
	for idx := range branches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sol := r.ComputeInverse(target, Configuration{Index: idx}, mask)
			if !sol.IsValid() {
				return nil
			}
			if !includeTurns {
				branches[idx] = []IKSolution{sol}
				return nil
			}
			branches[idx] = expandTurns(joints, sol)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(branches), nil
}

// expandTurns returns every valid solution reachable from sol by adding whole turns to joints
// 1, 4 and 6, nested turn1 → turn4 → turn6.
func expandTurns(joints []referenceframe.JointConfig, sol IKSolution) []IKSolution {
	turnsOf := func(i int) []int {
		if i >= len(joints) {
			return []int{0}
		}
		return referenceframe.Turns(joints[i], sol.JointTarget.Rob[i])
	}

	var out []IKSolution
	for _, t1 := range turnsOf(0) {
		for _, t4 := range turnsOf(3) {
			for _, t6 := range turnsOf(5) {
				cfg := Configuration{Turn1: t1, Turn4: t4, Turn6: t6, Index: sol.Configuration.Index}
				candidate := NewIKSolution(sol.JointTarget, cfg)
				candidate.Validate(joints)
				if candidate.IsValid() {
					out = append(out, candidate)
				}
			}
		}
	}
	return lo.UniqBy(out, func(s IKSolution) Configuration { return s.Configuration })
}

// NewRobot builds the robot named by kind.
func NewRobot(kind, name string, cfg referenceframe.MechanicalUnitConfig, world spatialmath.Pose) (Robot, error) {
	switch kind {
	case OffsetWristKind:
		return NewOffsetWristRobot(name, cfg, world)
	case SphericalWristKind:
		return NewSphericalWristRobot(name, cfg, world)
	case ScaraKind:
		return NewScaraRobot(name, cfg, world)
	case DeltaKind:
		return NewDeltaRobot(name, cfg, world)
	}
	return nil, errors.Errorf("unknown robot kind %q", kind)
}

// checkShape verifies the frame and joint counts of an architecture.
func checkShape(kind string, cfg referenceframe.MechanicalUnitConfig, frames, joints int) error {
	if len(cfg.Frames) != frames || len(cfg.Joints) != joints {
		return errors.Errorf("%s robot needs %d frames and %d joints, got %d and %d",
			kind, frames, joints, len(cfg.Frames), len(cfg.Joints))
	}
	return nil
}
