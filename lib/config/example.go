package config

// ExampleConfig is printed by the "example" mode. It settles a few particles
// onto the floor of a 2D box.
const ExampleConfig = `[SimulationControl]

#######################
# Required Parameters #
#######################

# Dimension of the simulation. Must be 2 or 3.
Dimension = 2
# Time step and end time, in seconds.
TimeStep = 1e-5
TimeEnd = 0.5

#######################
# Optional Parameters #
#######################

# MaxSteps ends the simulation early.
# MaxSteps = 1000

# Progress is logged every LogFrequency steps. Zero turns logging off.
LogFrequency = 1000

# Snapshots are written every OutputFrequency steps and on each step listed
# in OutputSteps. OutputSteps is a sequence like "0..100 + 500 - 63".
OutputFrequency = 10000
# OutputSteps = 1..10
OutputDir = output
# ParticleFormat = particles.{%05d,step}.{%d,rank}.txt
# GridFormat = grid.{%05d,step}.{%d,rank}.txt

[Mesh]

# The simulation box and the number of cells along each side. Z is ignored in
# 2D.
XMin = 0
YMin = 0
XMax = 0.1
YMax = 0.1
NX = 8
NY = 8
# Every level of refinement doubles the number of cells along each side.
# InitialRefinement = 0

# Obstacle blocks deactivate every cell whose center they contain.
# [Obstacle "step"]
# XMin = 0.05
# YMin = 0
# XMax = 0.1
# YMax = 0.025

[PhysicalProperties]

# Gravity, in m/s^2.
GY = -9.81

WallYoungsModulus = 1e6
WallPoissonRatio = 0.3
WallRestitution = 0.5
WallFriction = 0.3
WallRollingFriction = 0.1

[Material "glass"]

# Type is the index particles of this material carry. Types must be
# numbered 0, 1, 2, ...
Type = 0
Diameter = 0.01
Density = 2500
YoungsModulus = 1e6
PoissonRatio = 0.3
Restitution = 0.5
Friction = 0.3
RollingFriction = 0.1

[ModelParameters]

# linear or nonlinear
ParticleParticleModel = linear
ParticleWallModel = linear
# velocity_verlet or explicit_euler
Integration = velocity_verlet

# Contact pairs are kept while their centers are closer than
# NeighborhoodThreshold particle diameters.
NeighborhoodThreshold = 1.2

# Contact detection runs every ContactDetectionFrequency steps and load
# balancing every RepartitionFrequency steps. RepartitionFrequency must be a
# multiple of ContactDetectionFrequency. Zero turns load balancing off.
ContactDetectionFrequency = 10
RepartitionFrequency = 1000
# ParticleWeight = 10000

# CharacteristicVelocity = 1.0
# Exponent = 1.5

[InsertionInfo]

# uniform, non_uniform, or file
Method = uniform
TotalNumber = 18
InsertedNumberAtStep = 18
# Insertion runs on steps 1, 1 + InsertionFrequency, 1 + 2*InsertionFrequency...
InsertionFrequency = 20000
Type = 0

XMin = 0.005
YMin = 0.05
XMax = 0.095
YMax = 0.095
# Spacing between inserted particles, in diameters.
DistanceThreshold = 1.5

# RandomSeed = 1
# MaxAttempts = 1000
# FileName = particles.txt
# FileDiameters = false

[Timer]

# none, iteration, or end
Type = end

[Test]

# Prints every particle position at the end of the run.
Enabled = false

[Parallel]

# Number of ranks and the number of OS threads they run on. Zero uses every
# core.
Ranks = 1
Threads = 0`
