/*package geom contains small vector routines used by the contact searches and
force models. All vectors are gonum r3.Vecs.*/
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Norm returns the Euclidean length of v.
func Norm(v r3.Vec) float64 { return math.Sqrt(v.Dot(v)) }

// Norm2 returns the squared Euclidean length of v.
func Norm2(v r3.Vec) float64 { return v.Dot(v) }

// Dist2 returns the squared distance between a and b.
func Dist2(a, b r3.Vec) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Unit returns v scaled to unit length. The zero vector is returned
// unchanged.
func Unit(v r3.Vec) r3.Vec {
	n := Norm(v)
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Tangential returns the component of v perpendicular to the unit vector n.
func Tangential(v, n r3.Vec) r3.Vec {
	return v.Sub(n.Scale(v.Dot(n)))
}

// PlaneDistance returns the signed distance of x from the plane through p
// with unit normal n. It is positive on the side n points to.
func PlaneDistance(x, p, n r3.Vec) float64 {
	return x.Sub(p).Dot(n)
}

// ClosestOnSegment returns the point on the segment [a, b] closest to x.
func ClosestOnSegment(x, a, b r3.Vec) r3.Vec {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a
	}
	t := x.Sub(a).Dot(ab) / l2
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return a.Add(ab.Scale(t))
}

// InBox returns true if x is inside the half-open box [b.Min, b.Max) and
// false otherwise. If dim is 2, the z component is ignored.
func InBox(x r3.Vec, b r3.Box, dim int) bool {
	if x.X < b.Min.X || x.X >= b.Max.X || x.Y < b.Min.Y || x.Y >= b.Max.Y {
		return false
	}
	return dim == 2 || (x.Z >= b.Min.Z && x.Z < b.Max.Z)
}

// BoxDistance returns the distance from x to the box b, which is zero inside
// it. If dim is 2, the z component is ignored.
func BoxDistance(x r3.Vec, b r3.Box, dim int) float64 {
	dx := math.Max(0, math.Max(b.Min.X-x.X, x.X-b.Max.X))
	dy := math.Max(0, math.Max(b.Min.Y-x.Y, x.Y-b.Max.Y))
	dz := 0.0
	if dim == 3 {
		dz = math.Max(0, math.Max(b.Min.Z-x.Z, x.Z-b.Max.Z))
	}
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Flatten zeroes the components of v which do not exist in a dim-dimensional
// simulation. For translational quantities this is Z. Rotational quantities
// should use FlattenAxial instead.
func Flatten(v r3.Vec, dim int) r3.Vec {
	if dim == 2 {
		v.Z = 0
	}
	return v
}

// FlattenAxial zeroes the components of a rotational vector which do not
// exist in a dim-dimensional simulation. In 2D only rotation about Z exists.
func FlattenAxial(v r3.Vec, dim int) r3.Vec {
	if dim == 2 {
		v.X, v.Y = 0, 0
	}
	return v
}
