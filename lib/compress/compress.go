/*package compress packs arrays of 64-bit words into compact byte blobs. It is
used to ship particles between ranks during migration and repartitioning.

Words are split into eight byte columns before compression. Particle records
are dominated by float64s whose high-significance bytes (sign, exponent) are
nearly constant across a blob, so each column gets its own zstd frame and
those columns compress to almost nothing.
*/
package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

const (
	// Level is the zstd compression level. Migration blobs are written every
	// repartition, so speed matters more than ratio.
	Level = 1
	// MagicNumber starts every blob and catches blobs from somewhere else.
	MagicNumber = 0xd3a0b10b
)

// Buffer holds the internal arrays used by Words and Unwords so repeated
// calls do not allocate. The zero value is ready to use. It is not thread
// safe.
type Buffer struct {
	col, zbuf []byte
}

// Words compresses x into a blob. The returned slice is newly allocated.
func (buf *Buffer) Words(x []uint64) ([]byte, error) {
	out := &bytes.Buffer{}
	hd := [2]uint64{MagicNumber, uint64(len(x))}
	if err := binary.Write(out, binary.LittleEndian, hd[:]); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return out.Bytes(), nil
	}

	buf.col = resizeBytes(buf.col, len(x))
	for i := 0; i < 8; i++ {
		wordToByte(x, buf.col, i)

		var err error
		buf.zbuf, err = zstd.CompressLevel(buf.zbuf, buf.col, Level)
		if err != nil {
			return nil, err
		}

		err = binary.Write(out, binary.LittleEndian, int64(len(buf.zbuf)))
		if err != nil {
			return nil, err
		}
		out.Write(buf.zbuf)
	}

	return out.Bytes(), nil
}

// Unwords decompresses a blob created by Words.
func (buf *Buffer) Unwords(b []byte) ([]uint64, error) {
	rd := bytes.NewReader(b)
	hd := [2]uint64{}
	if err := binary.Read(rd, binary.LittleEndian, hd[:]); err != nil {
		return nil, fmt.Errorf("Blob is too short to contain a header: %s", err)
	} else if hd[0] != MagicNumber {
		return nil, fmt.Errorf("Blob starts with 0x%x, not the magic number 0x%x.",
			hd[0], MagicNumber)
	}

	x := make([]uint64, hd[1])
	if len(x) == 0 {
		return x, nil
	}

	for i := 0; i < 8; i++ {
		n := int64(0)
		if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		buf.zbuf = resizeBytes(buf.zbuf, int(n))
		if _, err := io.ReadFull(rd, buf.zbuf); err != nil {
			return nil, err
		}

		var err error
		buf.col, err = zstd.Decompress(buf.col, buf.zbuf)
		if err != nil {
			return nil, err
		} else if len(buf.col) != len(x) {
			return nil, fmt.Errorf("Byte column %d holds %d bytes, but the "+
				"blob holds %d words.", i, len(buf.col), len(x))
		}
		byteToWord(buf.col, x, i)
	}

	return x, nil
}

// wordToByte writes byte column col of every word in x to b.
func wordToByte(x []uint64, b []byte, col int) {
	for i := range x {
		b[i] = byte((x[i] >> (8 * col)) & 0xff)
	}
}

// byteToWord adds a one-byte column to every word in x.
func byteToWord(b []byte, x []uint64, col int) {
	for i := range x {
		x[i] |= uint64(b[i]) << (8 * col)
	}
}

// resizeBytes resizes a byte buffer to have length n.
func resizeBytes(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	b = b[:cap(b)]
	return append(b, make([]byte, n-len(b))...)
}
