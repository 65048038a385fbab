package demosaic

import(
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstructing is every method that fills all three channels.
var reconstructing = []Method{Basic, VNG4, AHD, RCD, AMAZE}

func noiseMosaic(width, height int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]float32, width*height)
	for i := range pix {
		pix[i] = rng.Float32()
	}
	// Hit the ends of the range too.
	pix[0], pix[len(pix)-1] = 0, 1
	return pix
}

func uniformMosaic(width, height int, v float32) []float32 {
	pix := make([]float32, width*height)
	for i := range pix {
		pix[i] = v
	}
	return pix
}

// mosaicOf samples a full color image through a CFA.
func mosaicOf(p *Planes, cfa CFA) []float32 {
	pix := make([]float32, p.Width*p.Height)
	for y:=0; y<p.Height; y++ {
		for x:=0; x<p.Width; x++ {
			i := y*p.Width + x
			pix[i] = p.Plane(cfa.ColorAt(y, x))[i]
		}
	}
	return pix
}

// smoothScene has channels that follow one luminance, the way real
// scenes mostly do.
func smoothScene(width, height int) *Planes {
	p := NewPlanes(width, height)
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			l := 0.5 + 0.35*math.Sin(0.35*float64(x))*math.Cos(0.3*float64(y))
			p.Set(x, y, float32(0.9*l), float32(l), float32(0.75*l))
		}
	}
	return p
}

func psnr(ref, got *Planes, crop int) float64 {
	var sum float64
	n := 0
	for y:=crop; y<ref.Height-crop; y++ {
		for x:=crop; x<ref.Width-crop; x++ {
			for c:=0; c<3; c++ {
				i := y*ref.Width + x
				d := float64(ref.Plane(c)[i] - got.Plane(c)[i])
				sum += d * d
				n++
			}
		}
	}
	if sum == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(float64(n) / sum)
}

func TestSamplesArePreserved(t *testing.T) {
	const w, h = 37, 29
	pix := noiseMosaic(w, h, 1)

	for _, cfa := range Presets() {
		for _, m := range Methods() {
			out, err := Demosaic(pix, w, h, cfa, m)
			require.NoError(t, err)
			for y:=0; y<h; y++ {
				for x:=0; x<w; x++ {
					i := y*w + x
					require.Equal(t, pix[i], out.Plane(cfa.ColorAt(y, x))[i], "%s %s (%d,%d)", m, cfa, x, y)
				}
			}
		}
	}
}

func TestOutputInRange(t *testing.T) {
	const w, h = 41, 33
	pix := noiseMosaic(w, h, 2)

	for _, m := range Methods() {
		out, err := Demosaic(pix, w, h, GRBG, m)
		require.NoError(t, err)
		for c:=0; c<3; c++ {
			for i, v := range out.Plane(c) {
				require.False(t, math.IsNaN(float64(v)), "%s: NaN at %d", m, i)
				require.True(t, v >= 0 && v <= 1, "%s: %f at %d", m, v, i)
			}
		}
	}
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	const w, h = 203, 171
	pix := noiseMosaic(w, h, 3)

	for _, m := range Methods() {
		one, err := Demosaic(pix, w, h, RGGB, m, WithWorkers(1))
		require.NoError(t, err)
		many, err := Demosaic(pix, w, h, RGGB, m, WithWorkers(8), WithTileSize(48))
		require.NoError(t, err)
		again, err := Demosaic(pix, w, h, RGGB, m, WithWorkers(8), WithTileSize(48))
		require.NoError(t, err)

		assert.Equal(t, many, again, "%s: repeated calls differ", m)
		if m == AMAZE {
			// AMAZE's chroma band and Nyquist area test depend on where
			// tile edges fall, so only a fixed tiling is bit exact.
			amazeOne, err := Demosaic(pix, w, h, RGGB, m, WithWorkers(1), WithTileSize(48))
			require.NoError(t, err)
			assert.Equal(t, amazeOne, many, "%s: worker count changed the result", m)
			continue
		}
		assert.Equal(t, one, many, "%s: tiling changed the result", m)
	}
}

func TestUniformInput(t *testing.T) {
	const w, h = 24, 20
	const k = float32(0.4)
	pix := uniformMosaic(w, h, k)

	for _, cfa := range Presets() {
		for _, m := range reconstructing {
			tolerance := 1e-6
			if m == AMAZE {
				tolerance = 1e-4
			}
			out, err := Demosaic(pix, w, h, cfa, m)
			require.NoError(t, err)
			for c:=0; c<3; c++ {
				for i, v := range out.Plane(c) {
					require.InDelta(t, k, v, tolerance, "%s %s: channel %d at %d", m, cfa, c, i)
				}
			}
		}
	}
}

func TestSmallImagesAreFullyPopulated(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 7}, {2, 3}, {3, 3}, {5, 5}, {6, 5}}

	for _, m := range reconstructing {
		for _, size := range sizes {
			w, h := size[0], size[1]
			out, err := Demosaic(uniformMosaic(w, h, 0.5), w, h, BGGR, m)
			require.NoError(t, err)
			for c:=0; c<3; c++ {
				for i, v := range out.Plane(c) {
					require.InDelta(t, 0.5, v, 1e-4, "%s %dx%d: channel %d at %d", m, w, h, c, i)
				}
			}
		}
	}
}

func TestSmallImagesUseBorderValues(t *testing.T) {
	// 2x3 RGGB, rows: R G / G B / R G.
	pix := []float32{
		0.1, 0.2,
		0.3, 0.4,
		0.5, 0.6,
	}
	want := map[[2]int][3]float32{
		{0, 0}: {0.1, 0.25, 0.4},
		{1, 1}: {0.3, (0.2+0.3+0.6)/3, 0.4},
		{0, 2}: {0.5, 0.45, 0.4},
	}

	for _, m := range Methods() {
		if m == None {
			continue
		}
		out, err := Demosaic(pix, 2, 3, RGGB, m)
		require.NoError(t, err, m.String())
		for p, rgb := range want {
			r, g, b := out.At(p[0], p[1])
			assert.InDeltaSlice(t, rgb[:], []float32{r, g, b}, 1e-6, "%s (%d,%d)", m, p[0], p[1])
		}
	}

	// A single photosite lands in every channel, and bigger images that
	// are still all border match Basic exactly.
	for _, m := range reconstructing {
		out, err := Demosaic([]float32{0.3}, 1, 1, BGGR, m)
		require.NoError(t, err, m.String())
		r, g, b := out.At(0, 0)
		assert.Equal(t, []float32{0.3, 0.3, 0.3}, []float32{r, g, b}, m.String())

		for _, size := range [][2]int{{1, 7}, {3, 3}, {4, 9}} {
			w, h := size[0], size[1]
			pix := noiseMosaic(w, h, int64(w*h))
			want, err := Demosaic(pix, w, h, GBRG, Basic)
			require.NoError(t, err)
			got, err := Demosaic(pix, w, h, GBRG, m)
			require.NoError(t, err)
			if w <= 2 || h <= 2 {
				assert.Equal(t, want, got, "%s %dx%d", m, w, h)
			}
			for c:=0; c<3; c++ {
				for i, v := range got.Plane(c) {
					require.True(t, v >= 0 && v <= 1, "%s %dx%d: channel %d at %d: %f", m, w, h, c, i, v)
				}
			}
		}
	}
}

// stepEdge is the 8x8 scene with a vertical edge between columns 3 and 4.
func stepEdge() []float32 {
	pix := make([]float32, 64)
	for y:=0; y<8; y++ {
		for x:=0; x<8; x++ {
			pix[y*8+x] = 0.2
			if x >= 4 {
				pix[y*8+x] = 0.8
			}
		}
	}
	return pix
}

func TestStepEdgeBasic(t *testing.T) {
	out, err := Demosaic(stepEdge(), 8, 8, RGGB, Basic)
	require.NoError(t, err)

	for y:=0; y<8; y++ {
		for x:=0; x<8; x++ {
			r, g, b := out.At(x, y)
			for _, v := range []float32{r, g, b} {
				switch {
				case x <= 2: assert.InDelta(t, 0.2, v, 1e-6, "(%d,%d)", x, y)
				case x >= 5: assert.InDelta(t, 0.8, v, 1e-6, "(%d,%d)", x, y)
				default:
					assert.True(t, v >= 0.2-1e-6 && v <= 0.8+1e-6, "(%d,%d) overshoots: %f", x, y, v)
				}
			}
		}
	}
}

func TestStepEdgeAMAZEFavorsVertical(t *testing.T) {
	debug := &DebugMaps{}
	_, err := Demosaic(stepEdge(), 8, 8, RGGB, AMAZE, WithDebug(debug))
	require.NoError(t, err)

	// Red sites on column 4 and blue sites on column 3, inside the
	// kernel's interior.
	for _, p := range [][2]int{{4, 2}, {4, 4}, {3, 3}, {3, 5}} {
		x, y := p[0], p[1]
		hv := debug.HVWeight[y*8+x]
		assert.Greater(t, hv, float32(0.5), "(%d,%d)", x, y)
	}
}

func TestRoundTrip(t *testing.T) {
	const w, h, crop = 96, 80, 8
	scene := smoothScene(w, h)

	thresholds := map[Method]float64{
		Basic: 30,
		VNG4:  30,
		AHD:   30,
		RCD:   35,
		AMAZE: 35,
	}

	for _, cfa := range Presets() {
		score := map[Method]float64{}
		for _, m := range reconstructing {
			out, err := Demosaic(mosaicOf(scene, cfa), w, h, cfa, m)
			require.NoError(t, err)
			score[m] = psnr(scene, out, crop)
			assert.Greater(t, score[m], thresholds[m], "%s %s", m, cfa)
		}
		t.Logf("%s: %v", cfa, score)

		assert.Greater(t, score[RCD], score[Basic], cfa.String())
		assert.Greater(t, score[AMAZE], score[Basic], cfa.String())
	}
}

func TestDebugMaps(t *testing.T) {
	const w, h = 40, 36
	pix := noiseMosaic(w, h, 4)

	for _, m := range []Method{RCD, AMAZE} {
		debug := &DebugMaps{}
		_, err := Demosaic(pix, w, h, RGGB, m, WithDebug(debug))
		require.NoError(t, err)

		assert.Equal(t, w, debug.Width)
		grids := debug.Grids()
		require.Len(t, grids, 4)
		for name, g := range grids {
			assert.Equal(t, w, g.Dx(), name)
			assert.Equal(t, h, g.Dy(), name)
			min, max := g.MinMax()
			assert.True(t, min >= 0 && max <= 1, "%s %s: [%f,%f]", m, name, min, max)
		}
	}
}

func TestInputErrors(t *testing.T) {
	_, err := Demosaic(nil, 0, 4, RGGB, Basic)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = Demosaic(make([]float32, 10), 4, 4, RGGB, Basic)
	assert.ErrorIs(t, err, ErrMosaicSize)

	_, err = Demosaic(make([]float32, 16), 4, 4, CFA(0x85858585), Basic)
	assert.ErrorIs(t, err, ErrInvalidCFA)

	_, err = Demosaic(make([]float32, 16), 4, 4, RGGB, Method(42))
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = DemosaicInterleaved(make([]float32, 15), 4, 4, RGGB, AHD, LayoutRGB)
	assert.ErrorIs(t, err, ErrMosaicSize)
}

func TestMethodNames(t *testing.T) {
	assert.Equal(t, []string{"none", "basic", "vng4", "ahd", "rcd", "amaze"}, MethodNames())

	for _, m := range Methods() {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	m, err := ParseMethod(" AMaZE ")
	require.NoError(t, err)
	assert.Equal(t, AMAZE, m)

	_, err = ParseMethod("lmmse")
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Equal(t, "Method(9)", Method(9).String())
}

func TestVNGTablesAreSymmetric(t *testing.T) {
	for _, green := range []bool{false, true} {
		table := vngTablesFor(green)
		require.NotEmpty(t, table.terms)
		for k:=0; k<8; k++ {
			assert.Greater(t, table.norm[k], float32(0))
			// Quarter turns map the pattern onto itself.
			assert.Equal(t, table.norm[k&1], table.norm[k], "green=%v dir %d", green, k)
		}
	}
}
