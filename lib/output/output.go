/*package output writes particle and grid snapshots and computes the
diagnostics reported alongside them.*/
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/format"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

const (
	DefaultParticleFormat = "particles.{%05d,step}.{%d,rank}.txt"
	DefaultGridFormat     = "grid.{%05d,step}.{%d,rank}.txt"
)

// Writer writes one particle snapshot and one grid snapshot per rank on
// every output step.
type Writer struct {
	Dir string
	particles, grid *format.File
}

// New creates a Writer. The file formats may use the variables "step" and
// "rank". Empty formats are replaced by the defaults.
func New(dir, particleFormat, gridFormat string) (*Writer, error) {
	if particleFormat == "" {
		particleFormat = DefaultParticleFormat
	}
	if gridFormat == "" {
		gridFormat = DefaultGridFormat
	}

	w := &Writer{Dir: dir}
	var err error
	if w.particles, err = format.ParseFileFormat(
		particleFormat, "step", "rank",
	); err != nil {
		return nil, l_error.Config("%s", err.Error())
	}
	if w.grid, err = format.ParseFileFormat(
		gridFormat, "step", "rank",
	); err != nil {
		return nil, l_error.Config("%s", err.Error())
	}
	return w, nil
}

func (w *Writer) path(f *format.File, rank int, step int64) string {
	name := f.Expand(map[string]int{"step": int(step), "rank": rank})
	return filepath.Join(w.Dir, name)
}

// WriteParticles writes the local particles of a rank to its snapshot file
// and returns the file's name.
func (w *Writer) WriteParticles(
	rank int, step int64, t float64, ps []*particles.Particle,
) (string, error) {
	fname := w.path(w.particles, rank, step)
	return fname, writeFile(fname, func(bw io.Writer) {
		fmt.Fprintf(bw, "# Step %d, t = %.10g s, rank %d\n", step, t, rank)
		fmt.Fprintln(bw, "# 0 - ID\n# 1 - Type\n# 2 - Diameter\n"+
			"# 3-5 - X, Y, Z\n# 6-8 - Vx, Vy, Vz\n"+
			"# 9-11 - Omega_x, Omega_y, Omega_z\n# 12-14 - Fx, Fy, Fz")
		for _, p := range ps {
			fmt.Fprintf(bw, "%d %d %.8g "+
				"%.10g %.10g %.10g %.8g %.8g %.8g "+
				"%.8g %.8g %.8g %.8g %.8g %.8g\n",
				p.ID, p.Type, p.Diameter,
				p.X.X, p.X.Y, p.X.Z, p.V.X, p.V.Y, p.V.Z,
				p.Omega.X, p.Omega.Y, p.Omega.Z,
				p.Force.X, p.Force.Y, p.Force.Z,
			)
		}
	})
}

// WriteGrid writes the cells owned by the rank, with their centers and
// subdomain, and returns the file's name.
func (w *Writer) WriteGrid(
	t *mesh.Triangulation, step int64,
) (string, error) {
	rank := t.Rank()
	fname := w.path(w.grid, rank, step)
	sub := t.Subdomain()
	return fname, writeFile(fname, func(bw io.Writer) {
		fmt.Fprintf(bw, "# Step %d, rank %d\n", step, rank)
		fmt.Fprintln(bw, "# 0 - Cell\n# 1-3 - Center\n# 4 - Subdomain")
		for _, id := range t.LocallyOwnedCells() {
			c := t.Center(id)
			fmt.Fprintf(bw, "%d %.8g %.8g %.8g %d\n",
				id, c.X, c.Y, c.Z, sub[id])
		}
	})
}

func writeFile(fname string, body func(io.Writer)) error {
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return l_error.Config("Could not create output directory for %s: %s",
			fname, err.Error())
	}
	f, err := os.Create(fname)
	if err != nil {
		return l_error.Config("Could not create output file %s: %s",
			fname, err.Error())
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	body(bw)
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// PrintTestMode prints the position of every particle, one rank at a time
// in rank order. It is collective.
func PrintTestMode(c comm.Comm, out io.Writer, ps []*particles.Particle) {
	for r := 0; r < c.Size(); r++ {
		if r == c.Rank() {
			for _, p := range ps {
				fmt.Fprintf(out, "%.6f %.6f %.6f\n", p.X.X, p.X.Y, p.X.Z)
			}
		}
		comm.Barrier(c)
	}
}
