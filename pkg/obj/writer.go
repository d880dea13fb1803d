// Package obj writes Wavefront OBJ geometry records.
//
// Only four record kinds are ever produced: v, vt, vn and f. There are no
// comments, groups, materials or smoothing directives, so a consumer can
// split every line on spaces and slashes.
package obj

import (
	"bufio"
	"io"
	"strconv"

	"github.com/flywave/go3d/float64/vec2"
	"github.com/flywave/go3d/float64/vec3"
)

// DefaultBufferSize is the write buffer used when none is given (1 MiB).
const DefaultBufferSize = 1 << 20

// DefaultPrecision is the number of fractional digits written per coordinate.
const DefaultPrecision = 6

// Corner is one face corner: 1-based position, texcoord and normal indices.
type Corner struct {
	V, VT, VN int64
}

// Writer appends OBJ records to an underlying stream through a large buffer.
// It tracks the number of bytes accepted so callers can use Size as the
// current file size without seeking or flushing.
type Writer struct {
	bw        *bufio.Writer
	precision int
	size      int64
	line      []byte
	err       error
}

// NewWriter returns a Writer with the given buffer size and coordinate
// precision. Non-positive values select the defaults.
func NewWriter(w io.Writer, bufferSize, precision int) *Writer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return &Writer{
		bw:        bufio.NewWriterSize(w, bufferSize),
		precision: precision,
		line:      make([]byte, 0, 128),
	}
}

// Vertex writes a "v x y z" record.
func (w *Writer) Vertex(p vec3.T) error {
	b := append(w.line[:0], 'v')
	b = w.appendFloats(b, p[:])
	return w.writeLine(b)
}

// TexCoord writes a "vt u v" record.
func (w *Writer) TexCoord(t vec2.T) error {
	b := append(w.line[:0], 'v', 't')
	b = w.appendFloats(b, t[:])
	return w.writeLine(b)
}

// Normal writes a "vn x y z" record.
func (w *Writer) Normal(n vec3.T) error {
	b := append(w.line[:0], 'v', 'n')
	b = w.appendFloats(b, n[:])
	return w.writeLine(b)
}

// Face writes a triangle record "f a/at/an b/bt/bn c/ct/cn".
func (w *Writer) Face(a, b, c Corner) error {
	line := append(w.line[:0], 'f')
	for _, k := range [3]Corner{a, b, c} {
		line = append(line, ' ')
		line = strconv.AppendInt(line, k.V, 10)
		line = append(line, '/')
		line = strconv.AppendInt(line, k.VT, 10)
		line = append(line, '/')
		line = strconv.AppendInt(line, k.VN, 10)
	}
	return w.writeLine(line)
}

// Size returns the number of bytes written so far, buffered or not.
func (w *Writer) Size() int64 {
	return w.size
}

// Flush writes any buffered data to the underlying stream.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.bw.Flush()
	return w.err
}

// appendFloats appends " f0 f1 ..." in fixed-point notation. The 'f' format
// never produces an exponent.
func (w *Writer) appendFloats(b []byte, vals []float64) []byte {
	for _, v := range vals {
		b = append(b, ' ')
		b = strconv.AppendFloat(b, v, 'f', w.precision, 64)
	}
	return b
}

func (w *Writer) writeLine(b []byte) error {
	if w.err != nil {
		return w.err
	}
	b = append(b, '\n')
	w.line = b
	n, err := w.bw.Write(b)
	w.size += int64(n)
	if err != nil {
		w.err = err
	}
	return err
}
