package referenceframe

import "math"

// Turns returns every whole-turn count t for which value + 360·t stays within the joint limits,
// ascending. Joints spanning less than a full turn only allow zero.
func Turns(joint JointConfig, value float64) []int {
	if joint.Limit.Span() < 360 {
		return []int{0}
	}
	lo := int(math.Ceil((joint.Limit.Min - value) / 360))
	hi := int(math.Floor((joint.Limit.Max - value) / 360))
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for t := lo; t <= hi; t++ {
		out = append(out, t)
	}
	return out
}
