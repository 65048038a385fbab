package quality

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

func offsetBy(p *demosaic.Planes, d float32) *demosaic.Planes {
	q := demosaic.NewPlanes(p.Width, p.Height)
	for c:=0; c<3; c++ {
		for i, v := range p.Plane(c) {
			q.Plane(c)[i] = v + d
		}
	}
	return q
}

func TestScenes(t *testing.T) {
	assert.Equal(t, []string{"ramp", "stepedge", "zoneplate", "colorchecker", "blobs"}, SceneNames())

	for _, s := range Scenes() {
		p := s.Build(30, 20)
		require.Equal(t, 30, p.Width, s.Name)
		require.Equal(t, 20, p.Height, s.Name)
		for c:=0; c<3; c++ {
			for i, v := range p.Plane(c) {
				require.True(t, v >= 0 && v <= 1, "%s channel %d at %d: %f", s.Name, c, i, v)
			}
		}
	}
}

func TestLookupScene(t *testing.T) {
	s, err := LookupScene(" ZonePlate")
	require.NoError(t, err)
	assert.Equal(t, "zoneplate", s.Name)

	_, err = LookupScene("kodim23")
	assert.Error(t, err)
}

func TestColorCheckerPatches(t *testing.T) {
	p := ColorChecker(60, 40)

	// Top left is dark skin, bottom right is black 2.
	r, g, b := p.At(0, 0)
	assert.True(t, r > g && g > b, "dark skin is reddish: %f %f %f", r, g, b)

	r, g, b = p.At(59, 39)
	assert.InDelta(t, r, g, 1e-3)
	assert.InDelta(t, g, b, 1e-3)
	assert.Less(t, r, float32(0.05))
}

func TestBlobsAreRepeatable(t *testing.T) {
	assert.Equal(t, Blobs(40, 30, 7), Blobs(40, 30, 7))
	assert.NotEqual(t, Blobs(40, 30, 7), Blobs(40, 30, 8))
}

func TestMosaic(t *testing.T) {
	p := Ramp(4, 4)
	pix := Mosaic(p, demosaic.GRBG)
	assert.Equal(t, p.G[0], pix[0])
	assert.Equal(t, p.R[1], pix[1])
	assert.Equal(t, p.B[4], pix[4])
	assert.Equal(t, p.G[5], pix[5])
}

func TestPSNR(t *testing.T) {
	ref := Blobs(20, 20, 1)

	score, err := PSNR(ref, ref, 0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(score, 1))

	score, err = PSNR(ref, offsetBy(ref, 0.01), 2)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, score, 1e-3)

	_, err = PSNR(ref, Blobs(20, 10, 1), 0)
	assert.Error(t, err)
	_, err = PSNR(ref, ref, 10)
	assert.Error(t, err)
}

func TestDeltaE(t *testing.T) {
	ref := ColorChecker(12, 8)

	mean, worst, err := DeltaE(ref, ref, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, worst)

	mean, worst, err = DeltaE(ref, offsetBy(ref, 0.05), 1)
	require.NoError(t, err)
	assert.Greater(t, mean, 0.5)
	assert.GreaterOrEqual(t, worst, mean)
}

func TestErrorHistogram(t *testing.T) {
	ref := Ramp(10, 10)
	h, err := ErrorHistogram(ref, offsetBy(ref, 0.01), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(300), h.TotalCount())
	assert.InDelta(t, 0.01, float64(h.ValueAtQuantile(50))/ErrorScale, 1e-4)
	assert.InDelta(t, 0.01, float64(h.Max())/ErrorScale, 1e-4)
}

func TestCompareDemosaiced(t *testing.T) {
	const w, h = 64, 48

	// Bilinear is exact on linear ramps, away from the borders.
	ramp := Ramp(w, h)
	got, err := demosaic.Demosaic(Mosaic(ramp, demosaic.RGGB), w, h, demosaic.RGGB, demosaic.Basic)
	require.NoError(t, err)
	r, err := Compare(ramp, got, 2)
	require.NoError(t, err)
	assert.Greater(t, r.PSNR, 60.0)
	assert.Less(t, r.ErrMax, 1e-4)

	blobs := Blobs(w, h, 3)
	got, err = demosaic.Demosaic(Mosaic(blobs, demosaic.BGGR), w, h, demosaic.BGGR, demosaic.RCD)
	require.NoError(t, err)
	r, err = Compare(blobs, got, 4)
	require.NoError(t, err)
	assert.Greater(t, r.PSNR, 25.0)
	assert.LessOrEqual(t, r.ErrP50, r.ErrP99)
	assert.LessOrEqual(t, r.ErrP99, r.ErrMax)
	t.Log(r)
}

func TestZonePlateRanking(t *testing.T) {
	const w, h, crop = 256, 192, 16
	scene := ZonePlate(w, h)

	for _, cfa := range demosaic.Presets() {
		pix := Mosaic(scene, cfa)
		score := map[demosaic.Method]float64{}
		for _, m := range []demosaic.Method{demosaic.Basic, demosaic.VNG4, demosaic.RCD, demosaic.AMAZE} {
			got, err := demosaic.Demosaic(pix, w, h, cfa, m)
			require.NoError(t, err)
			score[m], err = PSNR(scene, got, crop)
			require.NoError(t, err)
		}
		t.Logf("%s: %v", cfa, score)

		// Near Nyquist the direction aware methods pull well ahead.
		for _, m := range []demosaic.Method{demosaic.RCD, demosaic.AMAZE} {
			assert.Greater(t, score[m], score[demosaic.Basic], "%s %s vs basic", cfa, m)
			assert.Greater(t, score[m], score[demosaic.VNG4], "%s %s vs vng4", cfa, m)
		}
	}
}
