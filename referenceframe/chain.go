package referenceframe

import (
	"go.uber.org/multierr"

	"go.viam.com/flange/spatialmath"
)

// FrameChain is a serial kinematic chain: a base frame, one frame per joint and a flange frame.
// Parallel mechanisms may carry extra frames after the joint frames; Compose only uses the
// first len(Joints)+1 frames and the last one.
type FrameChain struct {
	Frames []FrameConfig
	Joints []JointConfig
}

// NewFrameChain validates and returns a chain.
func NewFrameChain(frames []FrameConfig, joints []JointConfig) (FrameChain, error) {
	chain := FrameChain{Frames: frames, Joints: joints}
	return chain, chain.Validate()
}

// Validate checks the frame count against the joint count.
func (c FrameChain) Validate() error {
	if len(c.Frames) < len(c.Joints)+2 {
		return NewIncorrectFrameCountError(len(c.Frames), len(c.Joints))
	}
	return nil
}

// Compose computes the flange pose for the given joint values:
// Frames[0] · Π JointTransform(Frames[i+1], Joints[i], values[i]) · Frames[last].
func (c FrameChain) Compose(values []float64) (spatialmath.Pose, error) {
	if err := c.Validate(); err != nil {
		return spatialmath.Pose{}, err
	}
	if len(values) < len(c.Joints) {
		return spatialmath.Pose{}, NewIncorrectInputLengthError(len(values), len(c.Joints))
	}
	partial, err := c.Partial(values, len(c.Joints))
	if err != nil {
		return spatialmath.Pose{}, err
	}
	result := c.Frames[0].Pose()
	if len(partial) > 0 {
		result = partial[len(partial)-1]
	}
	return result.Compose(c.Frames[len(c.Frames)-1].Pose()), nil
}

// Partial returns the cumulative transforms after each of the first n joints, starting from the
// base frame. Element i is the pose of joint frame i+1.
func (c FrameChain) Partial(values []float64, n int) ([]spatialmath.Pose, error) {
	if n > len(c.Joints) || n > len(values) {
		return nil, NewIncorrectInputLengthError(len(values), n)
	}
	out := make([]spatialmath.Pose, 0, n)
	cur := c.Frames[0].Pose()
	var errAll error
	for i := 0; i < n; i++ {
		link, err := JointTransform(c.Frames[i+1], c.Joints[i], values[i])
		if err != nil {
			multierr.AppendInto(&errAll, err)
			continue
		}
		cur = cur.Compose(link)
		out = append(out, cur)
	}
	if errAll != nil {
		return nil, errAll
	}
	return out, nil
}

// CheckRanges aggregates an out-of-range error for every joint whose value violates its limits.
func (c FrameChain) CheckRanges(values []float64) error {
	var errAll error
	for i, joint := range c.Joints {
		if i >= len(values) {
			break
		}
		multierr.AppendInto(&errAll, joint.CheckRange(i, values[i]))
	}
	return errAll
}
