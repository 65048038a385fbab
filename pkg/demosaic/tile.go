package demosaic

import(
	"image"
	"sync"

	"golang.org/x/sync/errgroup"
)

// A strategy reconstructs one tile at a time. Each method has its own
// implementation; they share the scheduler and border completion.
type strategy interface {
	// halo is how far outside its core a tile's kernel reads.
	halo() int
	// margin is the width of the image edge band left to border completion.
	margin() int
	// tileSize is the full edge length of a tile buffer, halo included.
	tileSize() int
	// reconstruct fills t.rgb for every core cell of the tile.
	reconstruct(t *tile)
}

// mosaic is the caller's input, read only.
type mosaic struct {
	pix    []float32
	width  int
	height int
}

// A tile is a core rectangle of the image plus a halo on every side. Its
// buffers are local; cells outside the image hold mirrored samples.
type tile struct {
	core   image.Rectangle // image coordinates
	top    int             // image row of buffer row 0
	left   int             // image column of buffer column 0
	rows   int
	cols   int
	halo   int

	cfa    CFA             // pattern relative to the buffer origin
	raw    plane
	rgb    [3]plane

	arena  *arena
	debug  *DebugMaps
}

func newTile(m mosaic, cfa CFA, core image.Rectangle, halo int, a *arena) *tile {
	t := &tile{
		core:  core,
		top:   core.Min.Y - halo,
		left:  core.Min.X - halo,
		rows:  core.Dy() + 2*halo,
		cols:  core.Dx() + 2*halo,
		halo:  halo,
		arena: a,
	}
	t.cfa = cfa.Offset(t.top, t.left)
	t.raw = a.plane(t.rows, t.cols)
	for i := range t.rgb {
		t.rgb[i] = a.plane(t.rows, t.cols)
	}

	for r:=0; r<t.rows; r++ {
		src := mirror(t.top+r, m.height) * m.width
		dst := r * t.cols
		for c:=0; c<t.cols; c++ {
			t.raw.pix[dst+c] = m.pix[src + mirror(t.left+c, m.width)]
		}
	}

	return t
}

// mirror reflects an out of range index about the edge pixels. The
// period is even, so the CFA phase of the index is kept.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// inCore reports whether buffer cell (r,c) is one of the tile's own pixels.
func (t *tile)inCore(r, c int) bool {
	return r >= t.halo && r < t.rows-t.halo && c >= t.halo && c < t.cols-t.halo
}

// keepRaw copies each cell's own sample into its own channel.
func (t *tile)keepRaw() {
	for r:=0; r<t.rows; r++ {
		for c:=0; c<t.cols; c++ {
			i := r*t.cols + c
			t.rgb[t.cfa.ColorAt(r, c)].pix[i] = t.raw.pix[i]
		}
	}
}

// record stores a per pixel value in a debug map, for core cells only.
func (t *tile)record(dst []float32, r, c int, v float32) {
	if dst == nil || !t.inCore(r, c) {
		return
	}
	dst[(t.top+r)*t.debug.Width + t.left + c] = v
}

// commit copies the core into the output planes, clamped to [0,1].
func (t *tile)commit(out *Planes) {
	for y:=t.core.Min.Y; y<t.core.Max.Y; y++ {
		for x:=t.core.Min.X; x<t.core.Max.X; x++ {
			i := (y-t.top)*t.cols + (x - t.left)
			o := y*out.Width + x
			out.R[o] = clampUnit(t.rgb[Red].pix[i])
			out.G[o] = clampUnit(t.rgb[Green].pix[i])
			out.B[o] = clampUnit(t.rgb[Blue].pix[i])
		}
	}
}

// clampUnit bounds v to [0,1]; NaN becomes the midpoint.
func clampUnit(v float32) float32 {
	switch {
	case v != v:  return 0.5
	case v < 0:   return 0
	case v > 1:   return 1
	}
	return v
}

// interiorRect is the part of the image the strategy's kernel owns. It
// is empty when the margins meet, and the border covers everything.
func interiorRect(width, height, margin int) image.Rectangle {
	if width <= 2*margin || height <= 2*margin {
		return image.Rectangle{}
	}
	return image.Rectangle{Min: image.Pt(margin, margin), Max: image.Pt(width-margin, height-margin)}
}

// runTiles splits the interior into tiles and reconstructs them with a
// bounded number of goroutines. Tiles write disjoint cells of out.
func runTiles(m mosaic, cfa CFA, s strategy, out *Planes, o *Options) error {
	interior := interiorRect(m.width, m.height, s.margin())
	if interior.Empty() {
		return nil
	}

	halo := s.halo()
	step := s.tileSize() - 2*halo
	if o.TileSize > 0 {
		step = o.TileSize
	}

	arenas := sync.Pool{New: func() any { return &arena{} }}

	var g errgroup.Group
	g.SetLimit(o.Workers)

	for top:=interior.Min.Y; top<interior.Max.Y; top+=step {
		for left:=interior.Min.X; left<interior.Max.X; left+=step {
			core := image.Rect(left, top, left+step, top+step).Intersect(interior)
			g.Go(func() error {
				a := arenas.Get().(*arena)
				defer arenas.Put(a)
				a.reset()

				t := newTile(m, cfa, core, halo, a)
				t.debug = o.Debug
				s.reconstruct(t)
				t.commit(out)
				return nil
			})
		}
	}

	return g.Wait()
}

// Helpers shared by the kernels.

const(
	eps   = float32(1e-5)
	epssq = float32(1e-10)
)

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sqr(v float32) float32 { return v * v }

// ulim bounds x between the two limits, whichever order they come in.
func ulim(x, y, z float32) float32 {
	if y < z {
		return min(max(x, y), z)
	}
	return min(max(x, z), y)
}

// intp is a linear blend: a*b + (1-a)*c.
func intp(a, b, c float32) float32 { return a*(b-c) + c }
