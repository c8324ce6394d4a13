package error

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	codes := []int{}
	exit = func(code int) { codes = append(codes, code) }
	defer func() { exit = osExit }()

	Report(nil)
	assert.Empty(t, codes, "nil errors must not exit")

	Report(Config("RepartitionFrequency %d is not a multiple of %d", 7, 2))
	Report(Invariant("particle %d inserted twice", 12))
	assert.Equal(t, []int{1, 1}, codes)
}

func TestIsConfig(t *testing.T) {
	err := Config("bad selector '%s'", "pp_quadratic")
	assert.True(t, IsConfig(err))
	assert.True(t, IsConfig(fmt.Errorf("while reading: %w", err)))
	assert.False(t, IsConfig(Invariant("ID collision")))
	assert.False(t, IsConfig(fmt.Errorf("plain")))
	assert.Equal(t, "bad selector 'pp_quadratic'", err.Error())
}
