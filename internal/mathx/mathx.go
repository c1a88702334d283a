// Package mathx holds the small numeric helpers shared by the physics and
// sensor code.
package mathx

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapRange linearly maps v from [inMin, inMax] onto [outMin, outMax].
// A degenerate input range maps everything to outMin.
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
