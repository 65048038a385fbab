package develop

import(
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/rawdev/pkg/demosaic"
	"github.com/abworrall/rawdev/pkg/ecolor"
	"github.com/abworrall/rawdev/pkg/emath"
	"github.com/abworrall/rawdev/pkg/quality"
	"github.com/abworrall/rawdev/pkg/rawio"
)

func writeFile(t *testing.T, filename, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0644))
}

// writeMosaicTIFF writes a 16 bit mosaic of a smooth scene.
func writeMosaicTIFF(t *testing.T, filename string, w, h int) {
	t.Helper()
	pix := quality.Mosaic(quality.Blobs(w, h, 2), demosaic.RGGB)
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for i, v := range pix {
		img.SetGray16(i%w, i/w, color.Gray16{Y: uint16(v * 0xFFFF)})
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))
	f, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, nil))
	require.NoError(t, f.Close())
}

func TestConfigYaml(t *testing.T) {
	c := NewConfig()
	c.CFA = "GBRG"
	c.Methods = []demosaic.Method{demosaic.VNG4, demosaic.AHD}
	c.ColorMatrix = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

	y := c.AsYaml()
	assert.Contains(t, y, "method: amaze")
	assert.Contains(t, y, "- vng4")

	c2, err := newConfigFromYaml([]byte(y))
	require.NoError(t, err)
	assert.Equal(t, c, c2)
}

func TestConfigDefaultsSurvivePartialYaml(t *testing.T) {
	c, err := newConfigFromYaml([]byte("method: rcd\nworkers: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, demosaic.RCD, c.Method)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, []string{"png"}, c.Outputs)
	assert.Equal(t, 8, c.Crop)

	_, err = newConfigFromYaml([]byte("method: lmmse\n"))
	assert.ErrorIs(t, err, demosaic.ErrUnknownMethod)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct{
		name string
		edit func(c *Config)
	}{
		{"output",     func(c *Config) { c.Outputs = []string{"png", "jpeg"} }},
		{"tonemapper", func(c *Config) { c.Tonemapper = "fattal02" }},
		{"cfa",        func(c *Config) { c.CFA = "RGBG" }},
		{"levels",     func(c *Config) { c.BlackLevel, c.WhiteLevel = 4000, 1000 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewConfig()
			test.edit(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := NewConfig()
	c.Tonemapper = "all"
	c.Outputs = OutputTypes
	assert.NoError(t, c.Validate())
}

func TestConfigOptions(t *testing.T) {
	c := NewConfig()
	c.CFA = "bggr"
	c.BlackLevel, c.WhiteLevel = 512, 16383

	opts, err := c.LoadOptions()
	require.NoError(t, err)
	assert.Equal(t, demosaic.BGGR, opts.CFA)
	assert.True(t, opts.ForceCFA)
	assert.Equal(t, 16383.0, opts.White)

	c.ColorMatrix = []float64{1, 2, 3}
	_, err = c.DemosaicOptions(nil)
	assert.Error(t, err)
}

func TestLoadFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	writeMosaicTIFF(t, filepath.Join(dir, "a.tif"), 8, 8)
	writeMosaicTIFF(t, filepath.Join(dir, "night", "b.TIFF"), 8, 8)
	writeFile(t, filepath.Join(dir, "night", "notes.txt"), "not a mosaic")
	writeFile(t, filepath.Join(dir, "night", "config.yaml"), "method: vng4\noutputs: [hdr]\n")

	j := NewJob()
	require.NoError(t, j.LoadFilesAndDirs(dir))
	assert.Equal(t, []string{filepath.Join(dir, "a.tif"), filepath.Join(dir, "night", "b.TIFF")}, j.Inputs)
	assert.Equal(t, demosaic.VNG4, j.Method)
	assert.Equal(t, []string{"hdr"}, j.Outputs)

	assert.Error(t, j.LoadFilesAndDirs(filepath.Join(dir, "missing")))

	writeFile(t, filepath.Join(dir, "bad", "config.yaml"), "outputs: [gif]\n")
	assert.Error(t, j.LoadFilesAndDirs(filepath.Join(dir, "bad")))
}

func TestDevelop(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	writeMosaicTIFF(t, filepath.Join(dir, "in", "frame.tif"), 40, 32)

	j := NewJob()
	require.NoError(t, j.LoadFilesAndDirs(filepath.Join(dir, "in")))
	j.Method = demosaic.RCD
	j.Outputs = OutputTypes
	j.Tonemapper = "linear"
	j.DumpDebug = true
	j.OutputDir = out

	files, err := j.Develop()
	require.NoError(t, err)

	want := lo.Map([]string{
		"frame.png", "frame.tif", "frame.hdr", "frame.cfaz",
		"frame-tmo-linear.png",
		"frame-debug-hvweight.png", "frame-debug-nyquist.png", "frame-debug-pqdir.png", "frame-debug-vhdir.png",
	}, func(f string, _ int) string { return filepath.Join(out, f) })
	assert.Equal(t, want, files)

	for _, f := range files {
		st, err := os.Stat(f)
		require.NoError(t, err, f)
		assert.Greater(t, st.Size(), int64(0), f)
	}

	// The cfaz output is the mosaic as loaded.
	m, err := rawio.ReadCFAZ(filepath.Join(out, "frame.cfaz"))
	require.NoError(t, err)
	assert.Equal(t, 40, m.Width)
	assert.Equal(t, demosaic.RGGB, m.CFA)
}

func TestDevelopKeepsCFAZInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "frame.cfaz")
	m := rawio.Mosaic{Width: 24, Height: 16, CFA: demosaic.BGGR}
	m.Pix = quality.Mosaic(quality.Blobs(m.Width, m.Height, 5), m.CFA)
	require.NoError(t, rawio.WriteCFAZ(input, m))
	before, err := os.ReadFile(input)
	require.NoError(t, err)

	j := NewJob()
	require.NoError(t, j.LoadFilesAndDirs(input))
	j.Outputs = []string{"cfaz", "png"}
	j.OutputDir = dir

	files, err := j.Develop()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "frame.png")}, files)

	after, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDevelopMissingInput(t *testing.T) {
	j := NewJob()
	j.Inputs = []string{filepath.Join(t.TempDir(), "gone.tif")}
	_, err := j.Develop()
	assert.Error(t, err)
}

func TestToSRGBWithDefaultProfileIsIdentity(t *testing.T) {
	p := quality.ColorChecker(12, 8)
	c := NewConfig()
	profile, err := c.Profile()
	require.NoError(t, err)

	got := ToSRGB(p, profile)
	for ch:=0; ch<3; ch++ {
		for i, v := range p.Plane(ch) {
			assert.InDelta(t, v, got.Plane(ch)[i], 1e-4)
		}
	}
}

func TestSceneHDRKeepsHighlights(t *testing.T) {
	p := demosaic.NewPlanes(2, 1)
	p.Set(0, 0, 0.5, 0.5, 0.5)
	p.Set(1, 0, 0, 0, 1)

	// A wider camera gamut: pure camera blue lands outside sRGB.
	profile := ecolor.DefaultProfile()
	profile.CamToXYZ = profile.CamToXYZ.Mult(emath.Mat3{
		1.2, -0.1, -0.1,
		-0.1, 1.2, -0.1,
		-0.1, -0.1, 1.2,
	})

	img := SceneHDR(p, profile)
	gray := img.HDRAt(0, 0).(hdrcolor.RGB)
	assert.InDelta(t, 0.5, gray.R, 1e-3)
	assert.InDelta(t, 0.5, gray.G, 1e-3)

	blue := img.HDRAt(1, 0).(hdrcolor.RGB)
	assert.Greater(t, blue.B, 1.0, "highlights are not clipped")
	assert.Equal(t, 0.0, blue.R, "negatives are floored")

	clipped := ToSRGB(p, profile)
	assert.Equal(t, float32(1), clipped.B[1])
}

func TestTonemappers(t *testing.T) {
	img := quality.Ramp(16, 16).HDR()
	for _, name := range Tonemappers {
		op, err := setupTonemapper(name, img)
		require.NoError(t, err, name)
		assert.NotNil(t, op, name)
	}
	_, err := setupTonemapper("fattal02", img)
	assert.Error(t, err)

	c := NewConfig()
	files, err := c.Tonemap(img, filepath.Join(t.TempDir(), "ramp"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRoundTrip(t *testing.T) {
	c := NewConfig()
	c.SceneWidth, c.SceneHeight, c.Crop = 48, 40, 4
	c.Methods = []demosaic.Method{demosaic.Basic, demosaic.RCD}

	scene, err := quality.LookupScene("ramp")
	require.NoError(t, err)
	reports, err := RoundTrip(c, scene)
	require.NoError(t, err)
	require.Len(t, reports, 8)

	for _, r := range reports {
		assert.Equal(t, "ramp", r.Scene)
		assert.Greater(t, r.PSNR, 30.0, r.String())
	}
	assert.Equal(t, "basic", reports[0].Method)
	assert.Equal(t, "RGGB", reports[0].CFA)
	assert.Equal(t, "rcd", reports[7].Method)
	assert.Equal(t, "GBRG", reports[7].CFA)

	c.Crop = 30
	_, err = RoundTrip(c, scene)
	assert.Error(t, err)
}

func TestPack(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.tif")
	out := filepath.Join(dir, "frame.cfaz")
	writeMosaicTIFF(t, in, 10, 6)

	c := NewConfig()
	c.CFA = "GRBG"
	require.NoError(t, Pack(c, in, out))

	m, err := rawio.ReadCFAZ(out)
	require.NoError(t, err)
	assert.Equal(t, demosaic.GRBG, m.CFA)

	orig, err := rawio.LoadTIFF(in, rawio.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, orig.Pix, m.Pix)
}
