package kinematics

import (
	"fmt"

	"go.viam.com/flange/referenceframe"
	"go.viam.com/flange/spatialmath"
)

// Configuration selects one inverse kinematics solution among those reaching the same pose:
// whole turns folded into joints 1, 4 and 6 plus the analytic branch index.
// Configurations are comparable with ==.
type Configuration struct {
	Turn1 int `json:"turn1"`
	Turn4 int `json:"turn4"`
	Turn6 int `json:"turn6"`
	Index int `json:"index"`
}

// ConfigurationFromJointTarget derives the turns from the robot joints of jt.
func ConfigurationFromJointTarget(jt referenceframe.JointTarget, index int) Configuration {
	return Configuration{
		Turn1: spatialmath.TurnCount(jt.Rob[0]),
		Turn4: spatialmath.TurnCount(jt.Rob[3]),
		Turn6: spatialmath.TurnCount(jt.Rob[5]),
		Index: index,
	}
}

// WithIndex returns a copy with the branch index replaced.
func (c Configuration) WithIndex(index int) Configuration {
	c.Index = index
	return c
}

// Branch decodes the index into its three flags.
func (c Configuration) Branch() Branch {
	return BranchFromIndex(c.Index)
}

func (c Configuration) String() string {
	return fmt.Sprintf("%d %d %d %d", c.Turn1, c.Turn4, c.Turn6, c.Index)
}

// Branch is the decoded form of a 6R configuration index.
type Branch struct {
	// Back places the wrist center behind the shoulder.
	Back bool
	// Down bends the elbow below the shoulder-wrist line.
	Down bool
	// Flip takes the negative wrist bend.
	Flip bool
}

// Bit values of the Branch flags within a configuration index.
const (
	BranchFlip = 1 << iota
	BranchDown
	BranchBack
)

// BranchFromIndex decodes a configuration index.
func BranchFromIndex(index int) Branch {
	return Branch{
		Back: index&BranchBack != 0,
		Down: index&BranchDown != 0,
		Flip: index&BranchFlip != 0,
	}
}

// Index encodes the branch as a configuration index.
func (b Branch) Index() int {
	index := 0
	if b.Back {
		index |= BranchBack
	}
	if b.Down {
		index |= BranchDown
	}
	if b.Flip {
		index |= BranchFlip
	}
	return index
}
