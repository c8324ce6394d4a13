/*package config reads Lethe/DEM parameter files and converts them into the
arguments the engine runs with.

Parameter files are gcfg (INI-style) files. ExampleConfig documents every
section and variable.
*/
package config

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/force"
	"github.com/lethe-cfd/lethe-dem/lib/format"
	"github.com/lethe-cfd/lethe-dem/lib/insertion"
	"github.com/lethe-cfd/lethe-dem/lib/integrator"
	"github.com/lethe-cfd/lethe-dem/lib/timer"
)

const (
	DefaultParticleWeight         = 10000
	DefaultCharacteristicVelocity = 1.0
	DefaultExponent               = 1.5
	DefaultMaxAttempts            = 1000
)

// BoxConfig is a box given by its corners. Z is ignored in 2D.
type BoxConfig struct {
	XMin, YMin, ZMin float64
	XMax, YMax, ZMax float64
}

func (b *BoxConfig) box() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: b.XMin, Y: b.YMin, Z: b.ZMin},
		Max: r3.Vec{X: b.XMax, Y: b.YMax, Z: b.ZMax},
	}
}

// RawArgs stores the unprocessed values which the user assigned to each
// variable of the parameter file. Its layout is the layout of the file.
type RawArgs struct {
	SimulationControl struct {
		Dimension         int
		TimeStep, TimeEnd float64
		MaxSteps          int64
		LogFrequency      int64
		OutputFrequency   int64
		OutputSteps       string
		OutputDir         string
		ParticleFormat    string
		GridFormat        string
	}

	Mesh struct {
		XMin, YMin, ZMin float64
		XMax, YMax, ZMax float64
		NX, NY, NZ       int
		InitialRefinement int
	}
	Obstacle map[string]*BoxConfig

	PhysicalProperties struct {
		GX, GY, GZ float64

		WallYoungsModulus   float64
		WallPoissonRatio    float64
		WallRestitution     float64
		WallFriction        float64
		WallRollingFriction float64
	}

	Material map[string]*struct {
		Type              int
		Diameter, Density float64
		YoungsModulus     float64
		PoissonRatio      float64
		Restitution       float64
		Friction          float64
		RollingFriction   float64
	}

	ModelParameters struct {
		ParticleParticleModel     string
		ParticleWallModel         string
		Integration               string
		NeighborhoodThreshold     float64
		ContactDetectionFrequency int64
		RepartitionFrequency      int64
		ParticleWeight            int64
		CharacteristicVelocity    float64
		Exponent                  float64
	}

	InsertionInfo struct {
		XMin, YMin, ZMin     float64
		XMax, YMax, ZMax     float64
		Method               string
		TotalNumber          int
		InsertedNumberAtStep int
		InsertionFrequency   int64
		Type                 int
		DistanceThreshold    float64
		RandomSeed           int64
		MaxAttempts          int
		FileName             string
		FileDiameters        bool
		VX, VY, VZ           float64
	}

	Timer struct {
		Type string
	}

	Test struct {
		Enabled bool
	}

	Parallel struct {
		Ranks, Threads int
	}
}

// Args stores configuration information. It is a processed version of
// RawArgs: selector strings are converted to their enums and values are
// grouped the way the engine's packages take them.
type Args struct {
	Dim int

	TimeStep, TimeEnd float64
	MaxSteps          int64
	LogFrequency      int64
	OutputFrequency   int64
	OutputSteps       []int
	OutputDir         string
	ParticleFormat    string
	GridFormat        string

	Box        r3.Box
	Cells      [3]int
	Refinement int
	Obstacles  []r3.Box

	Gravity    r3.Vec
	Properties force.Properties
	// Diameters holds the diameter of each particle type.
	Diameters []float64
	Densities []float64

	ParticleParticle      force.Law
	ParticleWall          force.Law
	Integration           integrator.Method
	NeighborhoodThreshold float64
	DetectionFrequency    int64
	RepartitionFrequency  int64
	ParticleWeight        int64

	Insertion          insertion.Params
	InsertionFrequency int64

	Timer    timer.Type
	TestMode bool
	Ranks    int
	Threads  int
}

// ParseConfigFile parses arguments from a config file.
func ParseConfigFile(fname string) (*RawArgs, error) {
	raw := &RawArgs{}
	if err := gcfg.ReadFileInto(raw, fname); err != nil {
		return nil, l_error.Config("Could not read the parameter file %s: %s",
			fname, err.Error())
	}
	return raw, nil
}

// ParseConfigString parses arguments from the text of a config file.
func ParseConfigString(text string) (*RawArgs, error) {
	raw := &RawArgs{}
	if err := gcfg.ReadStringInto(raw, text); err != nil {
		return nil, l_error.Config("Could not parse parameters: %s", err.Error())
	}
	return raw, nil
}

// ParseLaw converts a force model selector into a force.Law.
func ParseLaw(s string) (force.Law, error) {
	switch s {
	case "linear":
		return force.Linear, nil
	case "nonlinear", "non_linear":
		return force.NonLinear, nil
	}
	return 0, l_error.Config("Unrecognized force model '%s'. Must be "+
		"'linear' or 'nonlinear'.", s)
}

// ParseIntegration converts an integration selector into an
// integrator.Method.
func ParseIntegration(s string) (integrator.Method, error) {
	switch s {
	case "velocity_verlet", "":
		return integrator.VelocityVerlet, nil
	case "explicit_euler":
		return integrator.ExplicitEuler, nil
	}
	return 0, l_error.Config("Unrecognized Integration '%s'. Must be "+
		"'velocity_verlet' or 'explicit_euler'.", s)
}

// ParseInsertion converts an insertion selector into an insertion.Method.
func ParseInsertion(s string) (insertion.Method, error) {
	switch s {
	case "uniform", "":
		return insertion.Uniform, nil
	case "non_uniform":
		return insertion.NonUniform, nil
	case "file":
		return insertion.File, nil
	}
	return 0, l_error.Config("Unrecognized insertion Method '%s'. Must be "+
		"'uniform', 'non_uniform', or 'file'.", s)
}

// Process converts the raw user input to Args. Selectors are checked and
// defaults are filled in here, but nothing which depends on several
// variables at once is validated: that is Check's job.
func (raw *RawArgs) Process() (*Args, error) {
	sc, mp := &raw.SimulationControl, &raw.ModelParameters
	args := &Args{
		Dim:      sc.Dimension,
		TimeStep: sc.TimeStep, TimeEnd: sc.TimeEnd, MaxSteps: sc.MaxSteps,
		LogFrequency: sc.LogFrequency, OutputFrequency: sc.OutputFrequency,
		OutputDir:      sc.OutputDir,
		ParticleFormat: sc.ParticleFormat,
		GridFormat:     sc.GridFormat,

		Box: (&BoxConfig{
			raw.Mesh.XMin, raw.Mesh.YMin, raw.Mesh.ZMin,
			raw.Mesh.XMax, raw.Mesh.YMax, raw.Mesh.ZMax,
		}).box(),
		Cells:      [3]int{raw.Mesh.NX, raw.Mesh.NY, raw.Mesh.NZ},
		Refinement: raw.Mesh.InitialRefinement,

		NeighborhoodThreshold: mp.NeighborhoodThreshold,
		DetectionFrequency:    mp.ContactDetectionFrequency,
		RepartitionFrequency:  mp.RepartitionFrequency,
		ParticleWeight:        mp.ParticleWeight,

		InsertionFrequency: raw.InsertionInfo.InsertionFrequency,
		TestMode:           raw.Test.Enabled,
		Ranks:              raw.Parallel.Ranks,
		Threads:            raw.Parallel.Threads,
	}

	if args.Dim != 2 && args.Dim != 3 {
		return nil, l_error.Config("Dimension must be 2 or 3, not %d.", args.Dim)
	}
	if args.Dim == 2 {
		args.Cells[2] = 1
	}
	if args.OutputDir == "" {
		args.OutputDir = "."
	}
	if args.DetectionFrequency == 0 {
		args.DetectionFrequency = 1
	}
	if args.InsertionFrequency == 0 {
		args.InsertionFrequency = 1
	}
	if args.ParticleWeight == 0 {
		args.ParticleWeight = DefaultParticleWeight
	}
	if args.Ranks == 0 {
		args.Ranks = 1
	}

	if sc.OutputSteps != "" {
		steps, err := format.ExpandSequenceFormat(sc.OutputSteps)
		if err != nil {
			return nil, l_error.Config("OutputSteps: %s", err.Error())
		}
		args.OutputSteps = steps
	}

	names := make([]string, 0, len(raw.Obstacle))
	for name := range raw.Obstacle {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args.Obstacles = append(args.Obstacles, raw.Obstacle[name].box())
	}

	var err error
	if args.ParticleParticle, err = ParseLaw(mp.ParticleParticleModel); err != nil {
		return nil, err
	}
	if args.ParticleWall, err = ParseLaw(mp.ParticleWallModel); err != nil {
		return nil, err
	}
	if args.Integration, err = ParseIntegration(mp.Integration); err != nil {
		return nil, err
	}
	if args.Timer, err = timer.ParseType(raw.Timer.Type); err != nil {
		return nil, err
	}

	if err = raw.processMaterials(args); err != nil {
		return nil, err
	}
	if err = raw.processInsertion(args); err != nil {
		return nil, err
	}
	return args, nil
}

func (raw *RawArgs) processMaterials(args *Args) error {
	pp := &raw.PhysicalProperties
	args.Gravity = r3.Vec{X: pp.GX, Y: pp.GY, Z: pp.GZ}
	if args.Dim == 2 {
		args.Gravity.Z = 0
	}

	props := &args.Properties
	props.Wall = force.Material{
		YoungsModulus: pp.WallYoungsModulus, PoissonRatio: pp.WallPoissonRatio,
		Restitution: pp.WallRestitution, Friction: pp.WallFriction,
		RollingFriction: pp.WallRollingFriction,
	}
	props.CharacteristicVelocity = raw.ModelParameters.CharacteristicVelocity
	if props.CharacteristicVelocity == 0 {
		props.CharacteristicVelocity = DefaultCharacteristicVelocity
	}
	props.Exponent = raw.ModelParameters.Exponent
	if props.Exponent == 0 {
		props.Exponent = DefaultExponent
	}

	n := len(raw.Material)
	if n == 0 {
		return l_error.Config("At least one [Material] section is required.")
	}
	props.Materials = make([]force.Material, n)
	args.Diameters, args.Densities = make([]float64, n), make([]float64, n)
	seen := make([]bool, n)

	for name, m := range raw.Material {
		if m.Type < 0 || m.Type >= n || seen[m.Type] {
			return l_error.Config("Material '%s' has Type %d, but the %d "+
				"materials must have the distinct Types 0 to %d.",
				name, m.Type, n, n-1)
		}
		if m.Diameter <= 0 || m.Density <= 0 || m.YoungsModulus <= 0 {
			return l_error.Config("Material '%s' needs a positive Diameter, "+
				"Density, and YoungsModulus.", name)
		}
		seen[m.Type] = true
		props.Materials[m.Type] = force.Material{
			YoungsModulus: m.YoungsModulus, PoissonRatio: m.PoissonRatio,
			Restitution: m.Restitution, Friction: m.Friction,
			RollingFriction: m.RollingFriction,
		}
		args.Diameters[m.Type], args.Densities[m.Type] = m.Diameter, m.Density
	}
	return nil
}

func (raw *RawArgs) processInsertion(args *Args) error {
	in := &raw.InsertionInfo
	method, err := ParseInsertion(in.Method)
	if err != nil {
		return err
	}
	if in.Type < 0 || in.Type >= len(args.Diameters) {
		return l_error.Config("InsertionInfo.Type %d does not name a "+
			"material.", in.Type)
	}

	args.Insertion = insertion.Params{
		Method: method, Dim: args.Dim,
		TotalNumber:          in.TotalNumber,
		InsertedNumberAtStep: in.InsertedNumberAtStep,
		Box: (&BoxConfig{
			in.XMin, in.YMin, in.ZMin, in.XMax, in.YMax, in.ZMax,
		}).box(),
		DistanceThreshold:    in.DistanceThreshold,
		Type:                 in.Type,
		Diameter:             args.Diameters[in.Type],
		Density:              args.Densities[in.Type],
		InitialVelocity:      r3.Vec{X: in.VX, Y: in.VY, Z: in.VZ},
		RandomSeed:           uint64(in.RandomSeed),
		MaxAttempts:          in.MaxAttempts,
		FileName:             in.FileName,
		FileDiameters:        in.FileDiameters,
	}
	if args.Insertion.InsertedNumberAtStep == 0 {
		args.Insertion.InsertedNumberAtStep = in.TotalNumber
	}
	if args.Insertion.MaxAttempts == 0 {
		args.Insertion.MaxAttempts = DefaultMaxAttempts
	}
	if args.Insertion.RandomSeed == 0 {
		args.Insertion.RandomSeed = 1
	}
	if args.Dim == 2 {
		args.Insertion.Box.Min.Z, args.Insertion.Box.Max.Z = 0, 0
		args.Insertion.InitialVelocity.Z = 0
	}
	return nil
}

// Inserts returns true if the parameters ask for any particles to be
// inserted and false otherwise.
func (args *Args) Inserts() bool {
	return args.Insertion.TotalNumber > 0 ||
		args.Insertion.Method == insertion.File
}

// MaxDiameter returns the largest particle diameter of any material.
func (args *Args) MaxDiameter() float64 {
	max := 0.0
	for _, d := range args.Diameters {
		if d > max {
			max = d
		}
	}
	return max
}

// Flags holds the command line overrides of the parameter file. Zero values
// leave the file's values alone.
type Flags struct {
	Ranks int
	Steps int64
}

// Overwrite replaces arguments in args which have been set in flags.
func (args *Args) Overwrite(flags *Flags) {
	if flags.Ranks > 0 {
		args.Ranks = flags.Ranks
	}
	if flags.Steps > 0 {
		args.MaxSteps = flags.Steps
	}
}
