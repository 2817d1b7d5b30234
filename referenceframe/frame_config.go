// Package referenceframe holds the static kinematic description of a mechanical unit: link
// geometry in Denavit-Hartenberg form, joint configuration and the joint-space targets
// exchanged with the solvers.
package referenceframe

import (
	"math"

	"go.viam.com/flange/spatialmath"
)

// FrameConfig holds the DH parameters of one link. Angles are radians and lengths metres.
type FrameConfig struct {
	Name  string  `json:"name,omitempty"`
	Alpha float64 `json:"alpha"`
	A     float64 `json:"a"`
	D     float64 `json:"d"`
	Theta float64 `json:"theta"`
}

// NewDHTransform returns the link transform for cfg with a joint angle (radians) and
// displacement (metres) added to its static theta and d. A NaN angle is treated as zero.
//
// The matrix follows the Y-up convention used throughout flange: the link rotates about the
// local Y axis and extends along Z.
func NewDHTransform(cfg FrameConfig, angle, displacement float64) spatialmath.Pose {
	if math.IsNaN(angle) {
		angle = 0
	}
	theta := angle + cfg.Theta
	d := cfg.D + displacement

	st, ct := math.Sincos(theta)
	sa, ca := math.Sincos(cfg.Alpha)
	return spatialmath.NewPoseFromRows(
		[4]float64{ct * ca, ct * sa, -st, -cfg.A * st},
		[4]float64{-sa, ca, 0, d},
		[4]float64{st * ca, st * sa, ct, cfg.A * ct},
	)
}

// Pose returns the link transform with no joint contribution.
func (cfg FrameConfig) Pose() spatialmath.Pose {
	return NewDHTransform(cfg, 0, 0)
}
