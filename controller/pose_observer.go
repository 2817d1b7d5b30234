package controller

import (
	"sync"

	"go.viam.com/flange/logging"
	"go.viam.com/flange/spatialmath"
)

// PoseObserver caches the cartesian poses of the live joint state: the flange and the active
// tool center point in base, world and active frame coordinates. The cache is refreshed when
// the joints, the active tool or the active frame change.
type PoseObserver struct {
	logger logging.Logger
	c      *Controller

	mu       sync.RWMutex
	flange   spatialmath.Pose
	tcpBase  spatialmath.Pose
	tcpWorld spatialmath.Pose
	tcpFrame spatialmath.Pose

	listenersMu sync.Mutex
	listeners   []func()
}

func newPoseObserver(logger logging.Logger, c *Controller) *PoseObserver {
	zero := spatialmath.NewZeroPose()
	return &PoseObserver{logger: logger, c: c, flange: zero, tcpBase: zero, tcpWorld: zero, tcpFrame: zero}
}

// Flange returns the flange pose in robot base coordinates.
func (o *PoseObserver) Flange() spatialmath.Pose {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.flange
}

// TCPBase returns the tool center point in robot base coordinates.
func (o *PoseObserver) TCPBase() spatialmath.Pose {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.tcpBase
}

// TCPWorld returns the tool center point in world coordinates.
func (o *PoseObserver) TCPWorld() spatialmath.Pose {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.tcpWorld
}

// TCPFrame returns the tool center point in the active reference frame.
func (o *PoseObserver) TCPFrame() spatialmath.Pose {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.tcpFrame
}

// OnPoseChanged registers fn to run after every refresh.
func (o *PoseObserver) OnPoseChanged(fn func()) {
	o.listenersMu.Lock()
	o.listeners = append(o.listeners, fn)
	o.listenersMu.Unlock()
}

func (o *PoseObserver) jointStateChanged() {
	if !o.c.IsValid() {
		return
	}
	flange, err := o.c.group.ComputeForwardLive(Base)
	if err != nil {
		o.logger.Warnw("cannot compute flange pose", "error", err)
		return
	}
	o.mu.Lock()
	o.flange = flange
	o.mu.Unlock()
	o.refreshAndNotify()
}

func (o *PoseObserver) refreshAndNotify() {
	if err := o.refresh(); err != nil {
		o.logger.Warnw("cannot refresh tool center point", "error", err)
	}
	o.listenersMu.Lock()
	listeners := append(([]func())(nil), o.listeners...)
	o.listenersMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (o *PoseObserver) refresh() error {
	ext := o.c.group.JointState().Ext
	tcpBase := o.c.AddToolOffset(o.Flange(), o.c.Tool())
	tcpWorld, err := o.c.FrameToWorld(tcpBase, int(Base), ext)
	if err != nil {
		return err
	}
	tcpFrame, err := o.c.WorldToFrame(tcpWorld, o.c.Frame(), ext)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.tcpBase, o.tcpWorld, o.tcpFrame = tcpBase, tcpWorld, tcpFrame
	o.mu.Unlock()
	return nil
}
