package mesh

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/flywave/go3d/float64/vec2"
)

// checkIndices verifies that every face references already written records,
// uses the same index for all three classes and names three distinct vertices.
func checkIndices(t *testing.T, data []byte) (verts, faces int64) {
	t.Helper()
	var vt, vn int64
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		switch fields[0] {
		case "v":
			verts++
		case "vt":
			vt++
		case "vn":
			vn++
		case "f":
			faces++
			if len(fields) != 4 {
				t.Fatalf("face with %d corners: %q", len(fields)-1, sc.Text())
			}
			seen := make(map[int64]bool)
			for _, corner := range fields[1:] {
				parts := strings.Split(corner, "/")
				if len(parts) != 3 {
					t.Fatalf("malformed corner %q", corner)
				}
				var idx [3]int64
				for k, p := range parts {
					n, err := strconv.ParseInt(p, 10, 64)
					if err != nil {
						t.Fatalf("bad index %q: %v", p, err)
					}
					idx[k] = n
				}
				if idx[0] != idx[1] || idx[0] != idx[2] {
					t.Fatalf("corner %q mixes index spaces", corner)
				}
				if idx[0] < 1 || idx[0] > verts || idx[1] > vt || idx[2] > vn {
					t.Fatalf("corner %q references past %d written records", corner, verts)
				}
				if seen[idx[0]] {
					t.Fatalf("face %q repeats a vertex", sc.Text())
				}
				seen[idx[0]] = true
			}
		default:
			t.Fatalf("unexpected record %q", sc.Text())
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if verts != vt || verts != vn {
		t.Fatalf("record classes out of step: v=%d vt=%d vn=%d", verts, vt, vn)
	}
	return verts, faces
}

func TestStreamIndicesAcrossTiles(t *testing.T) {
	var buf bytes.Buffer
	g := Grid{NX: 3, NY: 2, Scale: 1}
	res, err := Stream(&buf, Options{TargetBytes: 20000, Grid: g, Columns: 4})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if res.Tiles < 5 {
		t.Fatalf("expected several tiles for this budget, got %d", res.Tiles)
	}

	verts, faces := checkIndices(t, buf.Bytes())
	if verts != res.Vertices || verts != int64(res.Tiles)*g.Vertices() {
		t.Errorf("expected %d vertices, file has %d, result says %d", int64(res.Tiles)*g.Vertices(), verts, res.Vertices)
	}
	if faces != res.Faces || faces != int64(res.Tiles)*g.Faces() {
		t.Errorf("expected %d faces, file has %d, result says %d", int64(res.Tiles)*g.Faces(), faces, res.Faces)
	}
	if res.Bytes != int64(buf.Len()) {
		t.Errorf("expected result bytes %d, got %d", buf.Len(), res.Bytes)
	}
}

func TestStreamStopsAtFirstTileBoundary(t *testing.T) {
	for _, target := range []int64{1, 700, 5000, 12345} {
		var sizes []int64
		var buf bytes.Buffer
		res, err := Stream(&buf, Options{
			TargetBytes: target,
			Grid:        Grid{NX: 2, NY: 2, Scale: 1},
			OnTile:      func(p Progress) { sizes = append(sizes, p.Bytes) },
		})
		if err != nil {
			t.Fatalf("target %d: Stream failed: %v", target, err)
		}

		if len(sizes) != res.Tiles {
			t.Fatalf("target %d: %d progress reports for %d tiles", target, len(sizes), res.Tiles)
		}
		last := sizes[len(sizes)-1]
		if last < target {
			t.Errorf("target %d: final size %d below target", target, last)
		}
		if len(sizes) > 1 && sizes[len(sizes)-2] >= target {
			t.Errorf("target %d: already %d bytes before the last tile", target, sizes[len(sizes)-2])
		}
		if last != res.Bytes || last != int64(buf.Len()) {
			t.Errorf("target %d: sizes disagree: progress %d, result %d, buffer %d", target, last, res.Bytes, buf.Len())
		}
	}
}

func TestStreamRasterLayout(t *testing.T) {
	g := Grid{NX: 2, NY: 5, Scale: 1.5}
	var got []Progress
	_, err := Stream(&bytes.Buffer{}, Options{
		TargetBytes: 20000,
		Grid:        g,
		Columns:     3,
		OnTile:      func(p Progress) { got = append(got, p) },
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(got) < 7 {
		t.Fatalf("expected at least 7 tiles to cover a row wrap, got %d", len(got))
	}

	stride := g.Stride()
	for k, p := range got {
		if p.Tile != k {
			t.Errorf("tile %d reported index %d", k, p.Tile)
		}
		if p.Row != k/3 || p.Col != k%3 {
			t.Errorf("tile %d: expected row %d col %d, got %d/%d", k, k/3, k%3, p.Row, p.Col)
		}
		want := vec2.T{float64(p.Col) * stride, float64(p.Row) * stride}
		if p.Origin != want {
			t.Errorf("tile %d: expected origin %v, got %v", k, want, p.Origin)
		}
		if p.Next.Vertex != 1+int64(k+1)*g.Vertices() {
			t.Errorf("tile %d: expected next vertex offset %d, got %d", k, 1+int64(k+1)*g.Vertices(), p.Next.Vertex)
		}
		if k > 0 && got[k-1].Row == p.Row {
			prev := got[k-1].Origin
			if p.Origin[0]-prev[0] != float64(g.NX)*g.Scale || p.Origin[1] != prev[1] {
				t.Errorf("tile %d does not abut tile %d: %v then %v", k, k-1, prev, p.Origin)
			}
		}
	}
}

func TestStreamDefaultColumns(t *testing.T) {
	var rows []int
	_, err := Stream(&bytes.Buffer{}, Options{
		TargetBytes: 66 * 700,
		Grid:        Grid{NX: 1, NY: 1, Scale: 1},
		OnTile:      func(p Progress) { rows = append(rows, p.Row) },
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(rows) <= DefaultColumns {
		t.Fatalf("expected more than %d tiles, got %d", DefaultColumns, len(rows))
	}
	if rows[DefaultColumns-1] != 0 || rows[DefaultColumns] != 1 {
		t.Errorf("expected wrap after %d columns, rows %v", DefaultColumns, rows[DefaultColumns-1:DefaultColumns+1])
	}
}

// failingWriter accepts limit bytes and then fails every write.
type failingWriter struct {
	limit   int
	written bytes.Buffer
}

var errDiskFull = errors.New("no space left on device")

func (w *failingWriter) Write(p []byte) (int, error) {
	room := w.limit - w.written.Len()
	if room <= 0 {
		return 0, errDiskFull
	}
	if len(p) > room {
		w.written.Write(p[:room])
		return room, errDiskFull
	}
	return w.written.Write(p)
}

func TestStreamPropagatesWriteError(t *testing.T) {
	w := &failingWriter{limit: 3000}
	_, err := Stream(w, Options{
		TargetBytes: 1 << 20,
		Grid:        Grid{NX: 4, NY: 4, Scale: 1},
		BufferBytes: 512,
	})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected disk full error, got %v", err)
	}
	if w.written.Len() != 3000 {
		t.Errorf("expected 3000 bytes to reach the writer, got %d", w.written.Len())
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "mesh.obj")

	res, err := Generate(Options{
		Path:        path,
		TargetBytes: 5000,
		Grid:        Grid{NX: 2, NY: 2, Scale: 1.0},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() < 5000 {
		t.Errorf("expected at least 5000 bytes, got %d", info.Size())
	}
	if info.Size() != res.Bytes {
		t.Errorf("expected result bytes %d to match file size %d", res.Bytes, info.Size())
	}
	if res.Path != path {
		t.Errorf("expected result path %s, got %s", path, res.Path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	checkIndices(t, data)

	// The budget must be crossed by the last tile, not earlier.
	var sizes []int64
	_, err = Stream(&bytes.Buffer{}, Options{
		TargetBytes: 5000,
		Grid:        Grid{NX: 2, NY: 2, Scale: 1.0},
		OnTile:      func(p Progress) { sizes = append(sizes, p.Bytes) },
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(sizes) != res.Tiles || sizes[len(sizes)-1] != res.Bytes {
		t.Fatalf("in-memory run disagrees with file run: %v vs %d tiles/%d bytes", sizes, res.Tiles, res.Bytes)
	}
	if res.Tiles > 1 && sizes[res.Tiles-2] >= 5000 {
		t.Errorf("%d tiles already reach the budget (%d bytes)", res.Tiles-1, sizes[res.Tiles-2])
	}
}

func TestGenerateDefaultFormatting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.obj")
	g := Grid{NX: 3, NY: 7, Scale: 0.3}

	// Precision left unset must still give six fractional digits.
	if _, err := Generate(Options{Path: path, TargetBytes: 20000, Grid: g}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	fixed := regexp.MustCompile(`^-?[0-9]+\.[0-9]{6}$`)
	var firstTile []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		switch fields[0] {
		case "v", "vt", "vn":
			for _, num := range fields[1:] {
				if !fixed.MatchString(num) {
					t.Fatalf("expected six fractional digits, got %q in %q", num, sc.Text())
				}
			}
			if fields[0] == "v" && int64(len(firstTile)) < g.Vertices() {
				firstTile = append(firstTile, sc.Text())
			}
		}
	}

	if firstTile[0] != "v 0.000000 0.000000 0.000000" || firstTile[1] != "v 0.300000 0.000000 0.000000" {
		t.Errorf("unexpected leading vertices %q, %q", firstTile[0], firstTile[1])
	}
	seen := make(map[string]bool)
	for _, line := range firstTile {
		if seen[line] {
			t.Errorf("distinct grid positions collapsed to %q", line)
		}
		seen[line] = true
	}
}

func TestGenerateOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.obj")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 100000), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	res, err := Generate(Options{Path: path, TargetBytes: 1, Grid: Grid{NX: 1, NY: 1, Scale: 1}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Tiles != 1 {
		t.Errorf("expected a single tile, got %d", res.Tiles)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if int64(len(data)) != res.Bytes {
		t.Errorf("expected truncated file of %d bytes, got %d", res.Bytes, len(data))
	}
}

func TestGenerateInvalidArgument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "mesh.obj")
	base := Options{Path: path, TargetBytes: 5000, Grid: Grid{NX: 2, NY: 2, Scale: 1}}

	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero target", func(o *Options) { o.TargetBytes = 0 }},
		{"negative target", func(o *Options) { o.TargetBytes = -1 }},
		{"zero nx", func(o *Options) { o.Grid.NX = 0 }},
		{"zero ny", func(o *Options) { o.Grid.NY = 0 }},
		{"zero scale", func(o *Options) { o.Grid.Scale = 0 }},
		{"negative scale", func(o *Options) { o.Grid.Scale = -2 }},
		{"negative columns", func(o *Options) { o.Columns = -1 }},
		{"empty path", func(o *Options) { o.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)

			_, err := Generate(opts)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if _, statErr := os.Stat(filepath.Dir(path)); !os.IsNotExist(statErr) {
				t.Errorf("expected no filesystem changes, stat gave %v", statErr)
			}
		})
	}
}

func TestGenerateIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("failed to create blocker: %v", err)
	}

	_, err := Generate(Options{
		Path:        filepath.Join(blocker, "mesh.obj"),
		TargetBytes: 100,
		Grid:        Grid{NX: 1, NY: 1, Scale: 1},
	})
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Errorf("I/O failure must not be reported as invalid argument: %v", err)
	}
}

func TestResultGiB(t *testing.T) {
	r := Result{Bytes: 3 * GiB / 2}
	if r.GiB() != 1.5 {
		t.Errorf("expected 1.5 GiB, got %f", r.GiB())
	}
}
