package controller

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/flange/kinematics"
	"go.viam.com/flange/logging"
	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// Controller drives one mechanical group. It holds the tools and reference frames targets
// refer to by index, the active tool, frame and configuration, and the pose observer.
//
// Tool indices: 0 is the bare flange, i > 0 is Tools()[i-1] and a negative index is the active
// tool. Frame indices: a negative index is world, 0 is the robot base and i > 0 is
// Frames()[i-1]. Invalid indices are logged and fall back to the flange and world.
type Controller struct {
	logger   logging.Logger
	group    *MechanicalGroup
	solver   *Solver
	observer *PoseObserver

	mu            sync.RWMutex
	valid         bool
	tools         []Tool
	frames        []ReferenceFrame
	tool          int
	frame         int
	configuration kinematics.Configuration
}

// NewController wires a controller around group and validates it. A validation failure is
// returned alongside the controller, which stays usable for inspection but will not apply
// solutions.
func NewController(
	logger logging.Logger,
	group *MechanicalGroup,
	tools []Tool,
	frames []ReferenceFrame,
) (*Controller, error) {
	c := &Controller{
		logger: logger,
		group:  group,
		tools:  append([]Tool(nil), tools...),
		frames: append([]ReferenceFrame(nil), frames...),
	}
	c.solver = newSolver(logger.Sublogger("solver"), c)
	c.observer = newPoseObserver(logger.Sublogger("observer"), c)
	group.setRetarget(c.holdToolCenterPoint)
	group.OnJointStateChanged(c.observer.jointStateChanged)
	err := c.Validate()
	return c, err
}

// Validate revalidates the mechanical group and refreshes the observed poses.
func (c *Controller) Validate() error {
	err := c.group.Validate()
	c.mu.Lock()
	c.valid = err == nil
	c.mu.Unlock()
	if err != nil {
		c.logger.Errorw("controller is not valid", "error", err)
		return err
	}
	c.observer.jointStateChanged()
	return nil
}

// IsValid reports whether the last validation succeeded.
func (c *Controller) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid
}

// Group returns the mechanical group.
func (c *Controller) Group() *MechanicalGroup {
	return c.group
}

// Solver returns the cartesian solver.
func (c *Controller) Solver() *Solver {
	return c.solver
}

// PoseObserver returns the observer of the robot's cartesian poses.
func (c *Controller) PoseObserver() *PoseObserver {
	return c.observer
}

// Tools returns a copy of the tool list.
func (c *Controller) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Tool(nil), c.tools...)
}

// AddTool appends tool and returns its index.
func (c *Controller) AddTool(tool Tool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = append(c.tools, tool)
	return len(c.tools)
}

// Frames returns a copy of the reference frame list.
func (c *Controller) Frames() []ReferenceFrame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ReferenceFrame(nil), c.frames...)
}

// AddFrame appends frame and returns its index.
func (c *Controller) AddFrame(frame ReferenceFrame) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
	return len(c.frames)
}

// Tool returns the active tool index.
func (c *Controller) Tool() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tool
}

// SetTool activates a tool and refreshes the observed poses.
func (c *Controller) SetTool(index int) {
	c.mu.Lock()
	changed := c.tool != index
	c.tool = index
	c.mu.Unlock()
	if changed {
		c.observer.refreshAndNotify()
	}
}

// Frame returns the active reference frame index.
func (c *Controller) Frame() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// SetFrame activates a reference frame and refreshes the observed poses.
func (c *Controller) SetFrame(index int) {
	c.mu.Lock()
	changed := c.frame != index
	c.frame = index
	c.mu.Unlock()
	if changed {
		c.observer.refreshAndNotify()
	}
}

// Configuration returns the active configuration.
func (c *Controller) Configuration() kinematics.Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configuration
}

// SetConfiguration sets the active configuration.
func (c *Controller) SetConfiguration(cfg kinematics.Configuration) {
	c.mu.Lock()
	c.configuration = cfg
	c.mu.Unlock()
}

// ValidToolIndex resolves index to a tool index that exists.
func (c *Controller) ValidToolIndex(index int) int {
	c.mu.RLock()
	active, count := c.tool, len(c.tools)
	c.mu.RUnlock()
	switch {
	case index < 0:
		if active < 0 || active > count {
			return 0
		}
		return active
	case index == 0:
		return 0
	case index > count:
		c.logger.Errorw("using flange instead of tool",
			"error", errors.Wrapf(ErrToolIndexOutOfRange, "tool index %d of %d", index, count))
		return 0
	}
	return index
}

// ToolOffset returns the offset of the tool at index.
func (c *Controller) ToolOffset(index int) spatialmath.Pose {
	index = c.ValidToolIndex(index)
	if index == 0 {
		return spatialmath.NewZeroPose()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools[index-1].Offset
}

// AddToolOffset maps a flange pose to the tool center point of the tool at index.
func (c *Controller) AddToolOffset(pose spatialmath.Pose, index int) spatialmath.Pose {
	return pose.Compose(c.ToolOffset(index))
}

// RemoveToolOffset maps a tool center point pose of the tool at index to the flange pose.
func (c *Controller) RemoveToolOffset(pose spatialmath.Pose, index int) spatialmath.Pose {
	return pose.Compose(c.ToolOffset(index).Inverse())
}

// FrameAt resolves a frame index.
func (c *Controller) FrameAt(index int) ReferenceFrame {
	switch {
	case index < 0:
		return WorldReferenceFrame{}
	case index == 0:
		return c.group
	}
	c.mu.RLock()
	count := len(c.frames)
	var frame ReferenceFrame
	if index <= count {
		frame = c.frames[index-1]
	}
	c.mu.RUnlock()
	if frame == nil {
		c.logger.Errorw("using world instead of reference frame",
			"error", errors.Wrapf(ErrFrameIndexOutOfRange, "frame index %d of %d", index, count))
		return WorldReferenceFrame{}
	}
	return frame
}

// ActiveFrame resolves the active frame index.
func (c *Controller) ActiveFrame() ReferenceFrame {
	return c.FrameAt(c.Frame())
}

// FrameToWorld maps a pose in the frame at index to world coordinates, with the external
// joints at ext.
func (c *Controller) FrameToWorld(pose spatialmath.Pose, frame int, ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	origin, err := c.FrameAt(frame).WorldFrameAt(c.group, ext)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return origin.Compose(pose), nil
}

// WorldToFrame maps a world pose into the frame at index, with the external joints at ext.
func (c *Controller) WorldToFrame(pose spatialmath.Pose, frame int, ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	origin, err := c.FrameAt(frame).WorldFrameAt(c.group, ext)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return origin.Inverse().Compose(pose), nil
}

// ConvertFrame re-expresses a pose given in frame from in frame to.
func (c *Controller) ConvertFrame(pose spatialmath.Pose, from, to int, ext referenceframe.ExtJoint) (spatialmath.Pose, error) {
	world, err := c.FrameToWorld(pose, from, ext)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return c.WorldToFrame(world, to, ext)
}

// ConvertTarget re-expresses a target's pose, using its own external joints.
func (c *Controller) ConvertTarget(target CartesianTarget, from, to int) (CartesianTarget, error) {
	pose, err := c.ConvertFrame(target.Pose, from, to, target.ExtJoint)
	if err != nil {
		return CartesianTarget{}, err
	}
	target.Pose = pose
	return target, nil
}

// TCPWorld returns the active tool center point in world coordinates.
func (c *Controller) TCPWorld() (spatialmath.Pose, error) {
	return c.ConvertFrame(c.observer.TCPBase(), int(Base), int(World), c.group.JointState().Ext)
}

// TCPRelativeToFrame returns the active tool center point in the active reference frame.
func (c *Controller) TCPRelativeToFrame() (spatialmath.Pose, error) {
	return c.ConvertFrame(c.observer.TCPBase(), int(Base), c.Frame(), c.group.JointState().Ext)
}

// holdToolCenterPoint re-solves the robot joints of jt so the tool center point keeps its pose
// in the active frame while the external joints move to jt.Ext.
func (c *Controller) holdToolCenterPoint(jt referenceframe.JointTarget) (referenceframe.JointTarget, error) {
	held, err := c.TCPRelativeToFrame()
	if err != nil {
		return jt, err
	}
	target, err := c.FrameToWorld(held, c.Frame(), jt.Ext)
	if err != nil {
		return jt, err
	}
	sol := c.solver.ComputeInverse(target, c.Tool(), c.Configuration(), jt.Ext, kinematics.IgnoreNone)
	if !sol.IsValid() {
		return jt, errors.Wrap(sol.Err, "cannot hold tool center point")
	}
	return sol.JointTarget, nil
}
