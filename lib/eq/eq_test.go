package eq

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestVecEps(t *testing.T) {
	x := r3.Vec{X: 1, Y: 2, Z: 3}
	tests := []struct {
		y   r3.Vec
		eps float64
		res bool
	}{
		{r3.Vec{X: 1, Y: 2, Z: 3}, 0, true},
		{r3.Vec{X: 1, Y: 2, Z: 3.1}, 0.01, false},
		{r3.Vec{X: 1, Y: 2, Z: 3.1}, 0.2, true},
		{r3.Vec{X: 1.5, Y: 2, Z: 3}, 0.2, false},
	}

	for i := range tests {
		if res := VecEps(x, tests[i].y, tests[i].eps); res != tests[i].res {
			t.Errorf("%d) Expected VecEps(%v, %v, %g) = %v, got %v.",
				i, x, tests[i].y, tests[i].eps, tests[i].res, res)
		}
	}
}

func TestSlices(t *testing.T) {
	if !Ints([]int{1, 2}, []int{1, 2}) || Ints([]int{1}, []int{2}) ||
		Ints([]int{1}, nil) || !Ints(nil, []int{}) {
		t.Errorf("Ints gave the wrong answer.")
	}
	if !Strings([]string{"a"}, []string{"a"}) || Strings([]string{"a"}, nil) {
		t.Errorf("Strings gave the wrong answer.")
	}
	if !Float64sEps([]float64{1, 2}, []float64{1.05, 2}, 0.1) ||
		Float64sEps([]float64{1}, []float64{1, 2}, 1) {
		t.Errorf("Float64sEps gave the wrong answer.")
	}
}
