package mesh

import (
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/flywave/go3d/float64/vec2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objbench/internal/logger"
	"github.com/Faultbox/objbench/pkg/obj"
)

// GiB is the number of bytes in one gibibyte.
const GiB = 1 << 30

// DefaultColumns is the number of tiles per raster row.
const DefaultColumns = 64

// Options configures a generation run.
type Options struct {
	Path        string
	TargetBytes int64
	Grid        Grid
	Columns     int // tiles per raster row before wrapping
	BufferBytes int // write buffer size
	Precision   int // fractional digits per coordinate, 0 selects 6

	// OnTile, if set, is called after every tile with the running totals.
	OnTile func(Progress)
}

// Progress reports the state of a run after a tile was written.
type Progress struct {
	Tile   int     // 0-based index of the tile just written
	Row    int     // raster row of that tile
	Col    int     // raster column of that tile
	Origin vec2.T  // world-space origin of that tile
	Bytes  int64   // output size after the tile
	Next   Offsets // offsets for the following tile
}

// Result summarizes a finished run.
type Result struct {
	Path     string
	Bytes    int64
	Tiles    int
	Vertices int64
	Faces    int64
}

// GiB returns the output size in gibibytes.
func (r Result) GiB() float64 {
	return float64(r.Bytes) / GiB
}

// Validate checks the options without touching the filesystem.
func (o Options) Validate() error {
	if o.Path == "" {
		return invalidf("empty destination path")
	}
	if o.TargetBytes <= 0 {
		return invalidf("target size %d, must be positive", o.TargetBytes)
	}
	if o.Grid.NX < 1 || o.Grid.NY < 1 {
		return invalidf("grid resolution %dx%d, must be at least 1x1", o.Grid.NX, o.Grid.NY)
	}
	if !(o.Grid.Scale > 0) || math.IsInf(o.Grid.Scale, 0) {
		return invalidf("grid scale %v, must be positive and finite", o.Grid.Scale)
	}
	if o.Columns < 0 {
		return invalidf("column wrap %d, must not be negative", o.Columns)
	}
	return nil
}

// Generate writes an OBJ file at o.Path whose size is the first whole-tile
// boundary at or past o.TargetBytes. Parent directories are created and an
// existing file is overwritten. On a write failure the file is left in
// place holding whatever was written.
func Generate(o Options) (Result, error) {
	if err := o.Validate(); err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(filepath.Dir(o.Path), 0755); err != nil {
		return Result{}, ioErr("creating directory for", o.Path, err)
	}
	f, err := os.OpenFile(o.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return Result{}, ioErr("creating", o.Path, err)
	}

	logger.Info("generating mesh",
		zap.String("path", o.Path),
		zap.Int64("target_bytes", o.TargetBytes),
		zap.Int("nx", o.Grid.NX),
		zap.Int("ny", o.Grid.NY),
		zap.Float64("scale", o.Grid.Scale))

	res, err := Stream(f, o)
	res.Path = o.Path
	if err != nil {
		return res, multierr.Append(ioErr("writing", o.Path, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return res, ioErr("closing", o.Path, err)
	}

	logger.Info("mesh written",
		zap.String("path", res.Path),
		zap.Int64("bytes", res.Bytes),
		zap.Int("tiles", res.Tiles),
		zap.Int64("vertices", res.Vertices),
		zap.Int64("faces", res.Faces))
	return res, nil
}

// Stream writes tiles to w until at least o.TargetBytes have been written,
// then flushes. o.Path is ignored. Write errors are returned unwrapped.
func Stream(w io.Writer, o Options) (Result, error) {
	if o.TargetBytes <= 0 {
		return Result{}, invalidf("target size %d, must be positive", o.TargetBytes)
	}
	if o.Grid.NX < 1 || o.Grid.NY < 1 {
		return Result{}, invalidf("grid resolution %dx%d, must be at least 1x1", o.Grid.NX, o.Grid.NY)
	}
	columns := o.Columns
	if columns == 0 {
		columns = DefaultColumns
	}

	ow := obj.NewWriter(w, o.BufferBytes, o.Precision)
	off := StartOffsets()
	stride := o.Grid.Stride()

	var res Result
	row, col := 0, 0
	for ow.Size() < o.TargetBytes {
		origin := vec2.T{float64(col) * stride, float64(row) * stride}
		n, err := GenerateTile(ow, off, o.Grid, origin)
		if err != nil {
			res.Bytes = ow.Size()
			return res, err
		}
		off = off.Advance(n)
		res.Tiles++
		res.Vertices += n
		res.Faces += o.Grid.Faces()

		if o.OnTile != nil {
			o.OnTile(Progress{
				Tile:   res.Tiles - 1,
				Row:    row,
				Col:    col,
				Origin: origin,
				Bytes:  ow.Size(),
				Next:   off,
			})
		}

		col++
		if col >= columns {
			col = 0
			row++
			logger.Debug("raster row complete",
				zap.Int("row", row-1),
				zap.Int("tiles", res.Tiles),
				zap.Int64("bytes", ow.Size()))
		}
	}

	res.Bytes = ow.Size()
	return res, ow.Flush()
}
