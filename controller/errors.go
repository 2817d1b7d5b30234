package controller

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/flange/referenceframe"
)

var (
	// ErrGroupInvalid is returned by operations that need a validated mechanical group.
	ErrGroupInvalid = errors.New("mechanical group is not valid")
	// ErrControllerInvalid is reported when a solution is applied to an invalid controller.
	ErrControllerInvalid = errors.New("controller is not valid")
	// ErrToolIndexOutOfRange is logged when a tool index names no tool.
	ErrToolIndexOutOfRange = errors.New("tool index is out of range")
	// ErrFrameIndexOutOfRange is logged when a frame index names no reference frame.
	ErrFrameIndexOutOfRange = errors.New("frame index is out of range")
)

// newJointTargetRangeError describes a joint target value outside its joint limits.
func newJointTargetRangeError(kind string, index int, value float64, limit referenceframe.Limit) error {
	return fmt.Errorf("%s joint target value %v at index %d %s %v", kind, value, index, referenceframe.OOBErrString, limit)
}
