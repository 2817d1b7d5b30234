package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// FloatTolerance is the absolute tolerance for comparing angles and matrix elements.
	FloatTolerance = 1e-6
	// SingularityAngleLimit is the wrist angle in degrees below which a spherical wrist is singular.
	SingularityAngleLimit = 10.0
	// FloatMax marks a joint value that is not set.
	FloatMax = 9e9
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// IsEqual reports whether a and b differ by less than FloatTolerance.
func IsEqual(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, FloatTolerance)
}

// Acos is math.Acos with arguments up to FloatTolerance outside [-1, 1] pulled onto the
// boundary. Arguments further out still yield NaN.
func Acos(x float64) float64 {
	switch {
	case x > 1 && x < 1+FloatTolerance:
		x = 1
	case x < -1 && x > -1-FloatTolerance:
		x = -1
	}
	return math.Acos(x)
}

// Round rounds value to the given number of decimal digits, halves to even.
func Round(value float64, digits int) float64 {
	mult := math.Pow(10, float64(digits))
	return math.RoundToEven(value*mult) / mult
}

// ClampPI wraps an angle in radians into [-π, π].
func ClampPI(value float64) float64 {
	value = math.Mod(value, 2*math.Pi)
	switch {
	case value > math.Pi:
		return value - 2*math.Pi
	case value < -math.Pi:
		return value + 2*math.Pi
	}
	return value
}

// Angle360 wraps an angle in degrees into [0, 360).
func Angle360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360-FloatTolerance {
		return 0
	}
	return deg
}

// TurnCount returns the number of whole turns contained in an angle in degrees, truncated toward
// zero. 360 is one turn, -720 is minus two.
func TurnCount(deg float64) int {
	return int(deg / 360)
}

// Quadrant returns the index of the interval containing value. Negative values map to
// negative quadrants starting at -1.
func Quadrant(value, interval float64) int {
	q := value / interval
	if q < 0 {
		return int(math.Ceil(q)) - 1
	}
	return int(math.Floor(q))
}

// ApplyQuadrant shifts an angle in degrees by whole turns towards the target 90° quadrant.
func ApplyQuadrant(value float64, quadrant int) float64 {
	delta := quadrant - Quadrant(value, 90)
	turn := math.Floor(math.Abs(float64(delta)) / 4)
	sign := 1.0
	if delta < 0 {
		sign = -1
	}
	return value + turn*360*sign
}

// SignedAngle returns the angle in degrees between from and to, signed by the side of normal
// the rotation from→to falls on.
func SignedAngle(from, to, normal r3.Vector) float64 {
	angle := RadToDeg(float64(from.Angle(to)))
	if normal.Dot(from.Cross(to)) < 0 {
		return -angle
	}
	return angle
}

// Angle360Between is SignedAngle mapped into [0, 360).
func Angle360Between(from, to, normal r3.Vector) float64 {
	angle := SignedAngle(from, to, normal)
	if angle < 0 {
		return angle + 360
	}
	return angle
}
