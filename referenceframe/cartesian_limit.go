package referenceframe

// CartesianLimit is the advisory speed and acceleration envelope of a mechanical unit's flange.
// Linear values are m/s and m/s², rotational values °/s and °/s².
type CartesianLimit struct {
	LinearSpeed   float64 `json:"linear_speed"`
	LinearAcc     float64 `json:"linear_acc"`
	RotationSpeed float64 `json:"rotation_speed"`
	RotationAcc   float64 `json:"rotation_acc"`
}

// DefaultCartesianLimit returns the envelope used when none is configured.
func DefaultCartesianLimit() CartesianLimit {
	return CartesianLimit{LinearSpeed: 3, LinearAcc: 10, RotationSpeed: 180, RotationAcc: 900}
}

// NullCartesianLimit returns an all-zero envelope.
func NullCartesianLimit() CartesianLimit {
	return CartesianLimit{}
}
