package referenceframe

import (
	"github.com/pkg/errors"
)

// MechanicalUnitConfig is the serializable geometry of a mechanical unit.
type MechanicalUnitConfig struct {
	Frames         []FrameConfig   `json:"frames"`
	Joints         []JointConfig   `json:"joints"`
	CartesianLimit *CartesianLimit `json:"cartesian_limit,omitempty"`
}

// Chain returns the frames and joints as a FrameChain.
func (c MechanicalUnitConfig) Chain() FrameChain {
	return FrameChain{Frames: c.Frames, Joints: c.Joints}
}

// Limit returns the configured cartesian limit or the default one.
func (c MechanicalUnitConfig) Limit() CartesianLimit {
	if c.CartesianLimit == nil {
		return DefaultCartesianLimit()
	}
	return *c.CartesianLimit
}

// CheckCompatible returns an error when other cannot be loaded into a unit shaped like c.
func (c MechanicalUnitConfig) CheckCompatible(other MechanicalUnitConfig) error {
	if len(other.Frames) != len(c.Frames) {
		return errors.Errorf("frame count %d does not match unit frame count %d", len(other.Frames), len(c.Frames))
	}
	if len(other.Joints) != len(c.Joints) {
		return errors.Errorf("joint count %d does not match unit joint count %d", len(other.Joints), len(c.Joints))
	}
	return nil
}
