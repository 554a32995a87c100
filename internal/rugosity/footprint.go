package rugosity

import "math"

// Orientation convention shared by Footprint and Rasterize: degrees from
// the row axis (increasing row) toward the column axis (increasing column).
// A chain at angle θ advances cos θ rows and sin θ columns per unit length.

// NormalizeOrientation folds an angle into [0, 180). Chains are undirected
// for footprint purposes.
func NormalizeOrientation(deg float64) float64 {
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	return deg
}

// Footprint returns the site rectangle, in metres, reserved for a chain of
// the given length and orientation. The long side follows whichever grid
// axis the chain is closer to.
func Footprint(lengthM, orientationDeg float64) (heightM, widthM float64) {
	// tilt is the angle between the chain and the column axis.
	tilt := math.Abs(90 - NormalizeOrientation(orientationDeg))
	a := tilt * math.Pi / 180

	if tilt < 45 {
		widthM = lengthM + math.Abs(lengthM*math.Sin(a))/1.3
		heightM = lengthM * math.Cos(a) / 1.1
	} else {
		widthM = lengthM * math.Sin(a) / 1.3
		heightM = lengthM + math.Abs(lengthM*math.Cos(a))/1.3
	}
	return heightM, widthM
}
