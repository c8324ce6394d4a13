/*package eq is a simple package for telling whether two arrays or vectors
are equal to one another.*/
package eq

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Strings returns true if two []string arrays are the same and false
// otherwise.
func Strings(x, y []string) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Ints returns true if two []int arrays are the same and false otherwise.
func Ints(x, y []int) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Float64sEps returns true if the two []float64 arrays are within eps of one
// another and false otherwise.
func Float64sEps(x, y []float64, eps float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i]+eps < y[i] || x[i]-eps > y[i] {
			return false
		}
	}
	return true
}

// VecEps returns true if every component of x is within eps of the same
// component of y and false otherwise.
func VecEps(x, y r3.Vec, eps float64) bool {
	return Float64sEps(
		[]float64{x.X, x.Y, x.Z}, []float64{y.X, y.Y, y.Z}, eps,
	)
}
