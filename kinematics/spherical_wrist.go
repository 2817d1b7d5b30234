package kinematics

import (
	"context"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// SphericalWristKind names the 6R spherical wrist architecture.
const SphericalWristKind = "spherical_wrist"

// flangeToWrist turns the flange frame so that the wrist axis lines up with joint 6.
var flangeToWrist = spatialmath.NewPoseFromEuler(r3.Vector{}, r3.Vector{Y: -90})

// SphericalWristRobot is a six axis arm whose last three axes intersect in one point, as on
// most industrial arms. Its chain has a base frame, six joint frames and a flange frame.
type SphericalWristRobot struct {
	*MechanicalUnit
}

// NewSphericalWristRobot validates the chain shape and returns the robot.
func NewSphericalWristRobot(name string, cfg referenceframe.MechanicalUnitConfig, world spatialmath.Pose) (*SphericalWristRobot, error) {
	if err := checkShape(SphericalWristKind, cfg, 8, 6); err != nil {
		return nil, err
	}
	unit, err := NewMechanicalUnit(name, cfg, world)
	if err != nil {
		return nil, err
	}
	return &SphericalWristRobot{unit}, nil
}

// Kind returns SphericalWristKind.
func (r *SphericalWristRobot) Kind() string {
	return SphericalWristKind
}

// BranchCount returns 8.
func (r *SphericalWristRobot) BranchCount() int {
	return 8
}

// ComputeInverse solves the arm triangle for joints 1 to 3 and the wrist rotation for 4 to 6.
// Wrist bends under SingularityAngleLimit are rejected unless masked.
func (r *SphericalWristRobot) ComputeInverse(target spatialmath.Pose, cfg Configuration, mask SolutionIgnoreMask) IKSolution {
	if sol, ok := checkBranch(r, cfg); !ok {
		return sol
	}
	chain := r.Chain()
	f, joints := chain.Frames, chain.Joints
	branch := cfg.Branch()
	theta := make([]float64, 6)

	// The forearm and wrist offset form one virtual link.
	link1 := f[2].A
	link2 := math.Hypot(f[4].D, f[3].A)
	linkAngle := math.Atan2(f[3].A, f[4].D)

	target = target.Compose(flangeToWrist)
	center := target.Transform(r3.Vector{Y: -f[6].D})

	// Joint 1, with a correction for a lateral shoulder offset.
	lateral := math.Asin(f[3].D / math.Hypot(center.X, center.Z))
	heading := math.Atan2(-center.X, center.Z)
	if branch.Back {
		theta[0] = heading + math.Pi + lateral
	} else {
		theta[0] = heading - lateral
	}

	// Joints 2 and 3 from the shoulder triangle.
	s1, c1 := math.Sincos(theta[0])
	x := center.Z*c1 - center.X*s1 - f[1].A
	y := center.Y - f[1].D
	l := math.Hypot(x, y)
	alpha := spatialmath.Acos((link1*link1 + link2*link2 - l*l) / (2 * link1 * link2))
	beta := spatialmath.Acos((link1*link1 - link2*link2 + l*l) / (2 * link1 * l))
	gamma := math.Atan2(y, x)
	if branch.Down {
		theta[1] = math.Pi/2 - gamma + beta
		theta[2] = math.Pi/2 + linkAngle + alpha - 2*math.Pi
	} else {
		theta[1] = math.Pi/2 - gamma - beta
		theta[2] = math.Pi/2 + linkAngle - alpha
	}
	for _, v := range theta[:3] {
		if math.IsNaN(v) {
			return NaNSolution()
		}
	}

	// Wrist rotation relative to the forearm.
	t03 := spatialmath.NewZeroPose()
	for i := 0; i < 3; i++ {
		link, err := referenceframe.JointTransform(f[i+1], joints[i], spatialmath.RadToDeg(theta[i]))
		if err != nil {
			return NewErrorSolution(err)
		}
		t03 = t03.Compose(link)
	}
	t36 := t03.Inverse().Compose(target)

	theta[3] = math.Atan2(t36.At(2, 1), t36.At(0, 1)) + math.Pi/2
	theta[4] = spatialmath.Round(spatialmath.Acos(t03.Column(1).Dot(target.Column(1))), 6)
	theta[5] = math.Atan2(-t36.At(1, 2), t36.At(1, 0)) + math.Pi

	switch {
	case math.Abs(theta[4]) < spatialmath.FloatTolerance:
		theta[3] = 0
	case branch.Flip && theta[4] > 0:
		theta[3] += math.Pi
		theta[5] += math.Pi
	case branch.Flip:
		theta[3] -= math.Pi
		theta[5] -= math.Pi
	}
	if branch.Flip {
		theta[4] = -theta[4]
	}
	for i := 3; i < 6; i++ {
		theta[i] = spatialmath.ClampPI(theta[i])
	}

	return createSolution(joints, theta, cfg, mask, solutionOptions{checkSingularity: true})
}

// ComputeInverseAll enumerates all eight branches.
func (r *SphericalWristRobot) ComputeInverseAll(
	ctx context.Context, target spatialmath.Pose, includeTurns bool, mask SolutionIgnoreMask,
) ([]IKSolution, error) {
	return computeInverseAll(ctx, r, target, includeTurns, mask)
}

// ConfigurationIndex classifies values by wrist position, elbow bend and wrist bend sign.
func (r *SphericalWristRobot) ConfigurationIndex(values []float64) (int, error) {
	chain := r.Chain()
	poses, err := chain.Partial(values, 6)
	if err != nil {
		return 0, err
	}
	return classify6R(chain, poses, true, values[4] < 0).Index(), nil
}
