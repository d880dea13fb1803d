// Package mesh generates large planar OBJ meshes tile by tile.
//
// A tile is an nx by ny grid of quads split into triangles. The streaming
// driver lays tiles out on a raster, threads the global index offsets
// through every tile and stops at the first tile boundary at or past the
// requested byte budget. Only one tile is ever in flight, so memory does
// not grow with the output size.
package mesh

import (
	"errors"
	"fmt"
)

// Generation errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIO              = errors.New("i/o error")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func ioErr(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrIO, err)
}
