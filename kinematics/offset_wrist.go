package kinematics

import (
	"context"
	"math"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// OffsetWristKind names the 6R offset wrist architecture.
const OffsetWristKind = "offset_wrist"

// OffsetWristRobot is a six axis arm whose wrist axes do not intersect, as on UR style arms.
// Its chain has a base frame, six joint frames and a flange frame.
type OffsetWristRobot struct {
	*MechanicalUnit
}

// NewOffsetWristRobot validates the chain shape and returns the robot.
func NewOffsetWristRobot(name string, cfg referenceframe.MechanicalUnitConfig, world spatialmath.Pose) (*OffsetWristRobot, error) {
	if err := checkShape(OffsetWristKind, cfg, 8, 6); err != nil {
		return nil, err
	}
	unit, err := NewMechanicalUnit(name, cfg, world)
	if err != nil {
		return nil, err
	}
	return &OffsetWristRobot{unit}, nil
}

// Kind returns OffsetWristKind.
func (r *OffsetWristRobot) Kind() string {
	return OffsetWristKind
}

// BranchCount returns 8.
func (r *OffsetWristRobot) BranchCount() int {
	return 8
}

// ComputeInverse solves the six joint angles in closed form.
func (r *OffsetWristRobot) ComputeInverse(target spatialmath.Pose, cfg Configuration, mask SolutionIgnoreMask) IKSolution {
	if sol, ok := checkBranch(r, cfg); !ok {
		return sol
	}
	chain := r.Chain()
	f := chain.Frames
	branch := cfg.Branch()
	raw := func(i int, angle float64) spatialmath.Pose {
		return referenceframe.NewDHTransform(f[i], angle, 0)
	}
	theta := make([]float64, 6)

	// Joint 1 from the wrist center projected onto the base plane.
	wrist := target.Compose(f[6].Pose().Inverse()).Point()
	radius := math.Hypot(wrist.X, wrist.Z)
	psi := math.Atan2(-wrist.X, wrist.Z)
	phi := spatialmath.Acos(f[4].D / radius)
	if branch.Back {
		theta[0] = psi + phi + math.Pi/2
	} else {
		theta[0] = psi - phi + math.Pi/2
	}

	// Joint 5 from the flange height over the shoulder plane.
	t16 := raw(1, theta[0]).Inverse().Compose(target)
	theta[4] = spatialmath.Acos((t16.At(1, 3) - f[4].D) / f[6].D)
	if branch.Flip {
		theta[4] = -theta[4]
	}

	// Joint 6 is undefined when the wrist is straight.
	t61 := t16.Inverse()
	if s5 := math.Sin(theta[4]); math.Abs(s5) >= spatialmath.FloatTolerance {
		theta[5] = math.Atan2(t61.At(0, 1)/s5, t61.At(2, 1)/s5)
	}

	// Joints 2 and 3 from the planar elbow triangle.
	t14 := t16.Compose(raw(6, theta[5]).Inverse()).Compose(raw(5, theta[4]).Inverse())
	p3 := t14.Point()
	reach := math.Hypot(p3.Z, p3.X)
	a2, a3 := f[2].A, f[3].A
	theta[2] = spatialmath.Acos((reach*reach - a2*a2 - a3*a3) / (2 * a2 * a3))
	if branch.Down {
		theta[2] = -theta[2]
	}
	theta[1] = math.Atan2(-p3.Z, -p3.X) - math.Asin(-a3*math.Sin(theta[2])/reach) - math.Pi/2

	// Joint 4 is the residual rotation about the forearm.
	t34 := raw(3, theta[2]).Inverse().Compose(raw(2, theta[1]).Inverse()).Compose(t14)
	theta[3] = math.Atan2(-t34.At(2, 2), -t34.At(0, 2)) + math.Pi/2

	return createSolution(chain.Joints, theta, cfg, mask, solutionOptions{subtractOffsets: true})
}

// ComputeInverseAll enumerates all eight branches.
func (r *OffsetWristRobot) ComputeInverseAll(
	ctx context.Context, target spatialmath.Pose, includeTurns bool, mask SolutionIgnoreMask,
) ([]IKSolution, error) {
	return computeInverseAll(ctx, r, target, includeTurns, mask)
}

// ConfigurationIndex classifies values by wrist position, elbow bend and wrist bend sign.
func (r *OffsetWristRobot) ConfigurationIndex(values []float64) (int, error) {
	chain := r.Chain()
	poses, err := chain.Partial(values, 6)
	if err != nil {
		return 0, err
	}
	wrist := effectiveAngle(chain.Joints[4], values[4])
	return classify6R(chain, poses, false, wrist < 0).Index(), nil
}

// effectiveAngle returns the link angle in radians a rotary joint value produces, wrapped
// into [-π, π].
func effectiveAngle(joint referenceframe.JointConfig, value float64) float64 {
	return spatialmath.ClampPI(spatialmath.DegToRad(joint.ValidValue(value)))
}

// classify6R evaluates the back and down predicates on the cumulative joint poses of a 6R arm.
// The elbow is "down" when the signed angle from the upper arm to the forearm about the
// shoulder axis is negative, or positive when downPositive is set.
func classify6R(chain referenceframe.FrameChain, poses []spatialmath.Pose, downPositive, flip bool) Branch {
	shoulder := poses[0]
	wristInShoulder := shoulder.Inverse().Transform(poses[4].Point())
	back := wristInShoulder.Z+chain.Frames[1].A < 0

	axis := shoulder.Column(1).Normalize()
	upperArm := poses[1].Point().Sub(shoulder.Point())
	forearm := poses[3].Point().Sub(shoulder.Point())
	angle := spatialmath.SignedAngle(upperArm, forearm, axis)
	down := angle < 0
	if downPositive {
		down = angle > 0
	}
	return Branch{Back: back, Down: down, Flip: flip}
}
