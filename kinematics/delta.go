package kinematics

import (
	"context"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// DeltaKind names the three arm delta architecture.
const DeltaKind = "delta"

const (
	tan60 = 1.73205080757
	sin30 = 0.5
)

// Frame indices carrying the delta geometry.
const (
	deltaBaseFrame     = 1  // A: base triangle radius, D: height of the base plane
	deltaUpperArmFrame = 2  // A: upper arm length
	deltaForearmFrame  = 3  // A: forearm (parallelogram) length
	deltaEffectorFrame = 10 // A: effector triangle radius
)

// DeltaRobot is a parallel robot with three upper arms on towers 120° apart. Its chain
// holds the arm and platform links; only the frames listed above enter the solution.
type DeltaRobot struct {
	*MechanicalUnit
}

// NewDeltaRobot validates the chain shape and returns the robot.
func NewDeltaRobot(name string, cfg referenceframe.MechanicalUnitConfig, world spatialmath.Pose) (*DeltaRobot, error) {
	if err := checkShape(DeltaKind, cfg, 14, 3); err != nil {
		return nil, err
	}
	unit, err := NewMechanicalUnit(name, cfg, world)
	if err != nil {
		return nil, err
	}
	return &DeltaRobot{unit}, nil
}

// Kind returns DeltaKind.
func (r *DeltaRobot) Kind() string {
	return DeltaKind
}

// BranchCount returns 1.
func (r *DeltaRobot) BranchCount() int {
	return 1
}

type deltaGeometry struct {
	base, effector, upperArm, forearm, height float64
}

func (r *DeltaRobot) geometry() deltaGeometry {
	f := r.Chain().Frames
	return deltaGeometry{
		base:     f[deltaBaseFrame].A,
		effector: f[deltaEffectorFrame].A,
		upperArm: f[deltaUpperArmFrame].A,
		forearm:  f[deltaForearmFrame].A,
		height:   f[deltaBaseFrame].D,
	}
}

// ComputeForward intersects the three forearm spheres. The effector keeps the base
// orientation; ErrNoSolution is returned when the spheres do not meet.
func (r *DeltaRobot) ComputeForward(values []float64) (spatialmath.Pose, error) {
	if len(values) < 3 {
		return spatialmath.Pose{}, referenceframe.NewIncorrectInputLengthError(len(values), 3)
	}
	g := r.geometry()
	joints := r.Chain().Joints
	th := make([]float64, 3)
	for i := range th {
		th[i] = spatialmath.DegToRad(joints[i].ValidValue(values[i]))
	}
	t := g.base - g.effector
	rf := g.upperArm

	y1 := -(t + rf*math.Cos(th[0]))
	z1 := -rf * math.Sin(th[0])
	y2 := (t + rf*math.Cos(th[1])) * sin30
	x2 := y2 * tan60
	z2 := -rf * math.Sin(th[1])
	y3 := (t + rf*math.Cos(th[2])) * sin30
	x3 := -y3 * tan60
	z3 := -rf * math.Sin(th[2])

	dnm := (y2-y1)*x3 - (y3-y1)*x2
	w1 := y1*y1 + z1*z1
	w2 := x2*x2 + y2*y2 + z2*z2
	w3 := x3*x3 + y3*y3 + z3*z3

	a1 := (z2-z1)*(y3-y1) - (z3-z1)*(y2-y1)
	b1 := -((w2-w1)*(y3-y1) - (w3-w1)*(y2-y1)) / 2
	a2 := -(z2-z1)*x3 + (z3-z1)*x2
	b2 := ((w2-w1)*x3 - (w3-w1)*x2) / 2

	a := a1*a1 + a2*a2 + dnm*dnm
	b := 2 * (a1*b1 + a2*(b2-y1*dnm) - z1*dnm*dnm)
	c := (b2-y1*dnm)*(b2-y1*dnm) + b1*b1 + dnm*dnm*(z1*z1-g.forearm*g.forearm)
	d := b*b - 4*a*c
	if d < 0 {
		return spatialmath.Pose{}, ErrNoSolution
	}

	z0 := -0.5 * (b + math.Sqrt(d)) / a
	x0 := (a1*z0 + b1) / dnm
	y0 := (a2*z0 + b2) / dnm
	return spatialmath.NewPoseFromPoint(r3.Vector{X: x0, Y: z0 + g.height, Z: y0}), nil
}

// ComputeInverse solves each tower independently in its own plane. The configuration index
// is ignored beyond the branch check.
func (r *DeltaRobot) ComputeInverse(target spatialmath.Pose, cfg Configuration, mask SolutionIgnoreMask) IKSolution {
	if sol, ok := checkBranch(r, cfg); !ok {
		return sol
	}
	g := r.geometry()
	pt := target.Point()
	p := r3.Vector{X: pt.X, Y: pt.Z, Z: pt.Y - g.height}

	theta := []float64{
		g.towerAngle(p),
		g.towerAngle(rotateZ(p, -120)),
		g.towerAngle(rotateZ(p, 120)),
	}
	return createSolution(r.Chain().Joints, theta, cfg, mask, solutionOptions{})
}

// towerAngle intersects the upper arm circle with the forearm sphere in the plane of the
// first tower. It returns NaN when they do not meet.
func (g deltaGeometry) towerAngle(p r3.Vector) float64 {
	x0, y0, z0 := p.X, p.Y-g.effector, p.Z
	y1 := -g.base
	rf, re := g.upperArm, g.forearm

	a := (x0*x0 + y0*y0 + z0*z0 + rf*rf - re*re - y1*y1) / (2 * z0)
	b := (y1 - y0) / z0
	d := -(a+b*y1)*(a+b*y1) + rf*(b*b*rf+rf)
	if d < 0 {
		return math.NaN()
	}
	y := (y1 - a*b - math.Sqrt(d)) / (b*b + 1)
	z := a + b*y
	return math.Atan2(-z, y1-y)
}

func rotateZ(p r3.Vector, deg float64) r3.Vector {
	s, c := math.Sincos(spatialmath.DegToRad(deg))
	return r3.Vector{X: c*p.X - s*p.Y, Y: s*p.X + c*p.Y, Z: p.Z}
}

// ComputeInverseAll returns the single delta solution when it is valid.
func (r *DeltaRobot) ComputeInverseAll(
	ctx context.Context, target spatialmath.Pose, includeTurns bool, mask SolutionIgnoreMask,
) ([]IKSolution, error) {
	return computeInverseAll(ctx, r, target, includeTurns, mask)
}

// ConfigurationIndex is always 0.
func (r *DeltaRobot) ConfigurationIndex(values []float64) (int, error) {
	if len(values) < 3 {
		return 0, referenceframe.NewIncorrectInputLengthError(len(values), 3)
	}
	return 0, nil
}
