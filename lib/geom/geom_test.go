package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUnit(t *testing.T) {
	u := Unit(r3.Vec{X: 3, Y: 4})
	assert.InDelta(t, 0.6, u.X, 1e-15)
	assert.InDelta(t, 0.8, u.Y, 1e-15)
	assert.Equal(t, r3.Vec{}, Unit(r3.Vec{}))
}

func TestTangential(t *testing.T) {
	n := r3.Vec{Z: 1}
	v := Tangential(r3.Vec{X: 1, Y: 2, Z: 3}, n)
	assert.Equal(t, r3.Vec{X: 1, Y: 2}, v)
}

func TestClosestOnSegment(t *testing.T) {
	a, b := r3.Vec{}, r3.Vec{X: 2}
	tests := []struct {
		x, exp r3.Vec
	}{
		{r3.Vec{X: 1, Y: 5}, r3.Vec{X: 1}},
		{r3.Vec{X: -1, Y: 1}, a},
		{r3.Vec{X: 3, Z: -1}, b},
	}
	for i := range tests {
		assert.Equal(t, tests[i].exp, ClosestOnSegment(tests[i].x, a, b),
			"test %d", i)
	}
	assert.Equal(t, a, ClosestOnSegment(r3.Vec{X: 7}, a, a))
}

func TestPlaneDistance(t *testing.T) {
	d := PlaneDistance(r3.Vec{X: 1, Y: 0.25}, r3.Vec{}, r3.Vec{Y: 1})
	assert.Equal(t, 0.25, d)
	d = PlaneDistance(r3.Vec{Y: -2}, r3.Vec{Y: 1}, r3.Vec{Y: 1})
	assert.Equal(t, -3.0, d)
}

func TestInBox(t *testing.T) {
	b := r3.Box{Min: r3.Vec{}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	assert.True(t, InBox(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, b, 3))
	assert.False(t, InBox(r3.Vec{X: 1, Y: 0.5, Z: 0.5}, b, 3))
	assert.False(t, InBox(r3.Vec{X: 0.5, Y: 0.5, Z: 4}, b, 3))
	assert.True(t, InBox(r3.Vec{X: 0.5, Y: 0.5, Z: 4}, b, 2))
}

func TestBoxDistance(t *testing.T) {
	b := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	assert.Equal(t, 0.0, BoxDistance(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, b, 3))
	assert.InDelta(t, 0.25, BoxDistance(r3.Vec{X: 0.5, Y: -0.25}, b, 3), 1e-15)
	assert.InDelta(t, 5, BoxDistance(r3.Vec{X: 4, Y: 5}, b, 3), 1e-15)
	assert.Equal(t, 0.0, BoxDistance(r3.Vec{X: 0.5, Y: 0.5, Z: 7}, b, 2))
}

func TestFlatten(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	assert.Equal(t, r3.Vec{X: 1, Y: 2}, Flatten(v, 2))
	assert.Equal(t, v, Flatten(v, 3))
	assert.Equal(t, r3.Vec{Z: 3}, FlattenAxial(v, 2))
}
