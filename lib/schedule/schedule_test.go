package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCadence(t *testing.T) {
	tests := []struct {
		c    Cadence
		due  []int64
		skip []int64
	}{
		{Every(3), []int64{0, 3, 6, 300}, []int64{1, 2, 4, 301}},
		{Cadence{4, 1}, []int64{1, 5, 9}, []int64{0, 4, 8}},
		{Cadence{1, 1}, []int64{0, 1, 2, 3}, nil},
		{Cadence{0, 0}, nil, []int64{0, 1, 2}},
		{Cadence{5, 6}, []int64{1, 6}, []int64{0, 5}},
	}

	for i := range tests {
		for _, s := range tests[i].due {
			assert.True(t, tests[i].c.Due(s), "test %d, step %d", i, s)
		}
		for _, s := range tests[i].skip {
			assert.False(t, tests[i].c.Due(s), "test %d, step %d", i, s)
		}
	}
}

func TestSchedule(t *testing.T) {
	s := New(10, 5, 20, 0)
	assert.Equal(t, Step{Repartition: true, Detection: true}, s.At(10))
	assert.Equal(t, Step{Detection: true}, s.At(15))
	assert.Equal(t, Step{Insertion: true}, s.At(21))
	assert.Equal(t, Step{}, s.At(22))
}
