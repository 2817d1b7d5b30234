package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// OOBErrString is contained in every joint out-of-range error.
const OOBErrString = "is out of range"

var (
	// ErrIndexOutOfRange is returned by indexers given an invalid index.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownJointType is returned when a joint type is neither rotary nor prismatic.
	ErrUnknownJointType = errors.New("unknown joint type")
)

// NewJointOutOfRangeError names the offending joint by its one-based number.
func NewJointOutOfRangeError(index int, value float64, limit Limit) error {
	return fmt.Errorf("joint %d value %v %s %v", index+1, value, OOBErrString, limit)
}

// NewIncorrectInputLengthError is returned when the number of joint values does not match the
// number of joints.
func NewIncorrectInputLengthError(actual, expected int) error {
	return errors.Errorf("number of joint values given (%d) does not match joint count (%d)", actual, expected)
}

// NewIncorrectFrameCountError is returned when a chain has too few frames for its joints.
func NewIncorrectFrameCountError(frames, joints int) error {
	return errors.Errorf("chain with %d joints needs at least %d frames, got %d", joints, joints+2, frames)
}
