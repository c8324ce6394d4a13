package config

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/force"
	"github.com/lethe-cfd/lethe-dem/lib/insertion"
	"github.com/lethe-cfd/lethe-dem/lib/integrator"
	"github.com/lethe-cfd/lethe-dem/lib/timer"
)

func process(t *testing.T, text string) (*Args, error) {
	raw, err := ParseConfigString(text)
	require.NoError(t, err)
	return raw.Process()
}

func TestExampleConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "example.ini")
	require.NoError(t, ioutil.WriteFile(fname, []byte(ExampleConfig), 0644))

	raw, err := ParseConfigFile(fname)
	require.NoError(t, err)
	args, err := raw.Process()
	require.NoError(t, err)
	require.NoError(t, Check(args))

	assert.Equal(t, 2, args.Dim)
	assert.Equal(t, [3]int{8, 8, 1}, args.Cells)
	assert.Equal(t, r3.Vec{Y: -9.81}, args.Gravity)
	assert.Equal(t, force.Linear, args.ParticleParticle)
	assert.Equal(t, integrator.VelocityVerlet, args.Integration)
	assert.Equal(t, timer.End, args.Timer)
	assert.Equal(t, int64(10), args.DetectionFrequency)
	assert.Equal(t, int64(1000), args.RepartitionFrequency)
	assert.Equal(t, int64(DefaultParticleWeight), args.ParticleWeight)
	assert.Equal(t, []float64{0.01}, args.Diameters)
	assert.Equal(t, insertion.Uniform, args.Insertion.Method)
	assert.Equal(t, 0.01, args.Insertion.Diameter)
	assert.Equal(t, 2500.0, args.Insertion.Density)
	assert.True(t, args.Inserts())
	assert.Equal(t, 1, args.Ranks)

	args.Overwrite(&Flags{Ranks: 4, Steps: 10})
	assert.Equal(t, 4, args.Ranks)
	assert.Equal(t, int64(10), args.MaxSteps)
}

func TestOptionalSections(t *testing.T) {
	text := strings.Replace(ExampleConfig, "# OutputSteps = 1..10",
		"OutputSteps = 1..3 + 7", 1)
	text += `
[Obstacle "b"]
XMin = 0.05
XMax = 0.1
YMin = 0
YMax = 0.02

[Obstacle "a"]
XMin = 0
XMax = 0.02
YMin = 0
YMax = 0.02
`
	args, err := process(t, text)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 7}, args.OutputSteps)
	require.Len(t, args.Obstacles, 2)
	assert.Equal(t, 0.0, args.Obstacles[0].Min.X)
	assert.Equal(t, 0.05, args.Obstacles[1].Min.X)
}

func TestProcessErrors(t *testing.T) {
	tests := []struct{ old, new string }{
		{"Dimension = 2", "Dimension = 4"},
		{"ParticleParticleModel = linear", "ParticleParticleModel = hooke"},
		{"ParticleWallModel = linear", "ParticleWallModel = hooke"},
		{"Integration = velocity_verlet", "Integration = rk4"},
		{"Method = uniform", "Method = poisson"},
		{"[Timer]\n\n# none, iteration, or end\nType = end",
			"[Timer]\n\n# none, iteration, or end\nType = always"},
		{"Type = 0\nDiameter", "Type = 1\nDiameter"},
		{"Density = 2500", "Density = 0"},
	}

	for i, test := range tests {
		require.Contains(t, ExampleConfig, test.old, "%d", i)
		text := strings.Replace(ExampleConfig, test.old, test.new, 1)
		_, err := process(t, text)
		assert.True(t, l_error.IsConfig(err), "%d) %v", i, err)
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct{ old, new string }{
		{"RepartitionFrequency = 1000", "RepartitionFrequency = 1005"},
		{"TimeStep = 1e-5", "TimeStep = 0"},
		{"NX = 8", "NX = 9"},
		{"NeighborhoodThreshold = 1.2", "NeighborhoodThreshold = 1.3"},
		{"XMin = 0.005\nYMin = 0.05\nXMax = 0.095",
			"XMin = 0.005\nYMin = 0.05\nXMax = 0.005"},
		{"Ranks = 1", "Ranks = -2"},
		{"NeighborhoodThreshold = 1.2", "NeighborhoodThreshold = 0.9"},
		{"DistanceThreshold = 1.5", "DistanceThreshold = 0.8"},
	}

	for i, test := range tests {
		require.Contains(t, ExampleConfig, test.old, "%d", i)
		text := strings.Replace(ExampleConfig, test.old, test.new, 1)
		args, err := process(t, text)
		require.NoError(t, err, "%d", i)
		err = Check(args)
		assert.True(t, l_error.IsConfig(err), "%d) %v", i, err)
	}
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "missing.ini"))
	assert.True(t, l_error.IsConfig(err))
	_, err = ParseConfigString("[SimulationControl]\nTimeStepp = 1\n")
	assert.True(t, l_error.IsConfig(err))
}

func TestParseCommandLine(t *testing.T) {
	mode, fname, flags, err := ParseCommandLine(nil)
	require.NoError(t, err)
	assert.Equal(t, HelpMode, mode)

	mode, fname, flags, err = ParseCommandLine(
		[]string{"run", "sim.ini", "-ranks", "3", "-steps", "100"},
	)
	require.NoError(t, err)
	assert.Equal(t, RunMode, mode)
	assert.Equal(t, "sim.ini", fname)
	assert.Equal(t, &Flags{Ranks: 3, Steps: 100}, flags)

	mode, _, _, err = ParseCommandLine([]string{"example"})
	require.NoError(t, err)
	assert.Equal(t, ExampleMode, mode)

	for _, argv := range [][]string{
		{"convert", "sim.ini"},
		{"run"},
		{"check", "sim.ini", "-threads", "2"},
		{"check", "sim.ini", "extra"},
	} {
		_, _, _, err = ParseCommandLine(argv)
		assert.True(t, l_error.IsConfig(err), "%v", argv)
	}
}
