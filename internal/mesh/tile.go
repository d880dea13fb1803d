package mesh

import (
	"github.com/flywave/go3d/float64/vec2"
	"github.com/flywave/go3d/float64/vec3"

	"github.com/Faultbox/objbench/pkg/obj"
)

// planeNormal is shared by every vertex of a planar tile.
var planeNormal = vec3.T{0, 0, 1}

// Sink receives the records of a tile in emission order.
// *obj.Writer satisfies it.
type Sink interface {
	Vertex(p vec3.T) error
	TexCoord(t vec2.T) error
	Normal(n vec3.T) error
	Face(a, b, c obj.Corner) error
}

// Offsets holds the next unused 1-based index of each record class.
type Offsets struct {
	Vertex   int64
	TexCoord int64
	Normal   int64
}

// StartOffsets returns the offsets of an empty OBJ file.
func StartOffsets() Offsets {
	return Offsets{Vertex: 1, TexCoord: 1, Normal: 1}
}

// Advance returns the offsets after n records of each class were written.
func (o Offsets) Advance(n int64) Offsets {
	return Offsets{
		Vertex:   o.Vertex + n,
		TexCoord: o.TexCoord + n,
		Normal:   o.Normal + n,
	}
}

// Grid describes the resolution and spacing of a single tile.
type Grid struct {
	NX    int     // quads along X
	NY    int     // quads along Y
	Scale float64 // world distance between neighbouring vertices
}

// Vertices returns (NX+1)*(NY+1), the vertex count of one tile.
func (g Grid) Vertices() int64 {
	return int64(g.NX+1) * int64(g.NY+1)
}

// Faces returns 2*NX*NY, the triangle count of one tile.
func (g Grid) Faces() int64 {
	return 2 * int64(g.NX) * int64(g.NY)
}

// Stride returns the world-space distance between neighbouring tile origins.
func (g Grid) Stride() float64 {
	return float64(g.NX) * g.Scale
}

// GenerateTile writes one tile to s and returns how many vertices it
// consumed. Texcoords and normals are consumed in the same amount.
//
// For every vertex in raster order (y outer, x inner) a v, vt and vn record
// is written; the faces follow. Quad (i, j) is split along its
// (i,j)-(i+1,j+1) diagonal into {(i,j), (i+1,j), (i+1,j+1)} and
// {(i,j), (i+1,j+1), (i,j+1)}.
func GenerateTile(s Sink, off Offsets, g Grid, origin vec2.T) (int64, error) {
	if g.NX < 1 || g.NY < 1 {
		return 0, invalidf("grid resolution %dx%d, must be at least 1x1", g.NX, g.NY)
	}

	for j := 0; j <= g.NY; j++ {
		y := origin[1] + float64(j)*g.Scale
		tv := float64(j) / float64(g.NY)
		for i := 0; i <= g.NX; i++ {
			x := origin[0] + float64(i)*g.Scale
			tu := float64(i) / float64(g.NX)

			if err := s.Vertex(vec3.T{x, y, 0}); err != nil {
				return 0, err
			}
			if err := s.TexCoord(vec2.T{tu, tv}); err != nil {
				return 0, err
			}
			if err := s.Normal(planeNormal); err != nil {
				return 0, err
			}
		}
	}

	row := int64(g.NX + 1)
	corner := func(local int64) obj.Corner {
		return obj.Corner{
			V:  off.Vertex + local,
			VT: off.TexCoord + local,
			VN: off.Normal + local,
		}
	}

	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			l00 := int64(j)*row + int64(i)
			c00 := corner(l00)
			c10 := corner(l00 + 1)
			c01 := corner(l00 + row)
			c11 := corner(l00 + row + 1)

			if err := s.Face(c00, c10, c11); err != nil {
				return 0, err
			}
			if err := s.Face(c00, c11, c01); err != nil {
				return 0, err
			}
		}
	}

	return g.Vertices(), nil
}
