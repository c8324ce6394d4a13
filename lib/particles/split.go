package particles

/* This file contains the routines which ship particles between ranks. */

import (
	"github.com/lethe-cfd/lethe-dem/lib/comm"
	"github.com/lethe-cfd/lethe-dem/lib/compress"
)

// Split sorts particles into per-rank send lists. dest returns the rank a
// particle should be sent to, or -1 if it should not be sent anywhere.
func Split(ps []*Particle, size int, dest func(p *Particle) int) [][]*Particle {
	out := make([][]*Particle, size)
	for _, p := range ps {
		if r := dest(p); r >= 0 {
			out[r] = append(out[r], p)
		}
	}
	return out
}

// exchange sends send[r] to rank r and returns everything received, in rank
// order. It is collective. If encoding fails on any rank, every rank returns
// an error.
func exchange(
	c comm.Comm, buf *compress.Buffer, send [][]*Particle,
) ([]*Particle, error) {
	blobs := make([][]byte, c.Size())
	var err error
	for r := range send {
		if blobs[r], err = Encode(buf, send[r]); err != nil {
			break
		}
	}
	if err = comm.Agree(c, err); err != nil {
		return nil, err
	}

	recv := c.Alltoallv(blobs)

	out := []*Particle{}
	for r := range recv {
		ps, err := Decode(buf, recv[r])
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	return out, nil
}
