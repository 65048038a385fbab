package rawio

import(
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

func testMosaic() Mosaic {
	m := Mosaic{Width: 5, Height: 4, CFA: demosaic.GBRG, Make: "Canon", Model: "EOS 5D"}
	m.Pix = make([]float32, 20)
	for i := range m.Pix {
		m.Pix[i] = float32(i) / 19
	}
	return m
}

func writeGrayTIFF(t *testing.T, img image.Image) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "mosaic.tif")
	f, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, nil))
	require.NoError(t, f.Close())
	return filename
}

func TestCFAZRoundTrip(t *testing.T) {
	m := testMosaic()

	var buf bytes.Buffer
	require.NoError(t, EncodeCFAZ(&buf, m))
	assert.Equal(t, "CFAZ", buf.String()[:4])

	got, err := DecodeCFAZ(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestCFAZFile(t *testing.T) {
	m := testMosaic()
	filename := filepath.Join(t.TempDir(), "frame.cfaz")
	require.NoError(t, WriteCFAZ(filename, m))

	got, err := LoadMosaic(filename, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, filename, got.Filename)
	assert.Equal(t, m.Pix, got.Pix)
	assert.Equal(t, demosaic.GBRG, got.CFA)
}

func TestCFAZRejectsJunk(t *testing.T) {
	_, err := DecodeCFAZ(bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, ErrBadContainer)

	_, err = DecodeCFAZ(bytes.NewReader([]byte("XXXX\x01\x00 and then some more bytes")))
	assert.ErrorIs(t, err, ErrBadContainer)

	var buf bytes.Buffer
	require.NoError(t, EncodeCFAZ(&buf, testMosaic()))
	truncated := buf.Bytes()[:40]
	_, err = DecodeCFAZ(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrBadContainer)

	bad := testMosaic()
	bad.Pix = bad.Pix[1:]
	assert.ErrorIs(t, EncodeCFAZ(&buf, bad), demosaic.ErrMosaicSize)
}

func TestCFAZRejectsBadDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCFAZ(&buf, testMosaic()))
	good := buf.Bytes()

	withSize := func(w, h uint32) []byte {
		data := append([]byte(nil), good...)
		binary.LittleEndian.PutUint32(data[6:], w)
		binary.LittleEndian.PutUint32(data[10:], h)
		return data
	}

	for _, size := range [][2]uint32{{6, 4}, {5, 5}, {0, 4}, {5, 0}, {1 << 20, 1 << 20}, {math.MaxUint32, math.MaxUint32}} {
		_, err := DecodeCFAZ(bytes.NewReader(withSize(size[0], size[1])))
		assert.ErrorIs(t, err, ErrBadContainer, "%dx%d", size[0], size[1])
	}

	_, err := DecodeCFAZ(bytes.NewReader(withSize(5, 4)))
	assert.NoError(t, err)
}

func TestLoadTIFF16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 4, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 0xFFFF})
	img.SetGray16(1, 0, color.Gray16{Y: 1000})
	img.SetGray16(2, 0, color.Gray16{Y: 2000})
	filename := writeGrayTIFF(t, img)

	m, err := LoadTIFF(filename, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, demosaic.RGGB, m.CFA, "no EXIF, so the default pattern")
	assert.Equal(t, float32(1), m.Pix[0])
	assert.Equal(t, float32(0), m.Pix[7])

	// Levels: black at 1000 clamps below, white at 2000 saturates.
	m, err = LoadTIFF(filename, LoadOptions{Levels: Levels{Black: 1000, White: 2000}, CFA: demosaic.BGGR})
	require.NoError(t, err)
	assert.Equal(t, demosaic.BGGR, m.CFA)
	assert.Equal(t, []float32{1, 0, 1, 0}, m.Pix[:4])
	assert.Equal(t, float32(0), m.Pix[4])
}

func TestLoadTIFF8(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(1, 1, color.Gray{Y: 0xFF})
	img.SetGray(0, 1, color.Gray{Y: 51})
	filename := writeGrayTIFF(t, img)

	m, err := LoadMosaic(filename, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, float32(1), m.Pix[3])
	assert.InDelta(t, 0.2, m.Pix[2], 1e-6)
}

func TestLoadTIFFErrors(t *testing.T) {
	filename := writeGrayTIFF(t, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	_, err := LoadTIFF(filename, LoadOptions{})
	assert.ErrorIs(t, err, ErrNotMosaic)

	filename = writeGrayTIFF(t, image.NewGray16(image.Rect(0, 0, 2, 2)))
	_, err = LoadTIFF(filename, LoadOptions{Levels: Levels{Black: 10, White: 5}})
	assert.Error(t, err)

	_, err = LoadTIFF(filepath.Join(t.TempDir(), "missing.tif"), LoadOptions{})
	assert.Error(t, err)

	_, err = LoadMosaic("frame.jpg", LoadOptions{})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestCFAFromExifPattern(t *testing.T) {
	le := []byte{2, 0, 2, 0, 0, 1, 1, 2}
	cfa, err := cfaFromExifPattern(le)
	require.NoError(t, err)
	assert.Equal(t, demosaic.RGGB, cfa)

	be := []byte{0, 2, 0, 2, 2, 1, 1, 0}
	cfa, err = cfaFromExifPattern(be)
	require.NoError(t, err)
	assert.Equal(t, demosaic.BGGR, cfa)

	_, err = cfaFromExifPattern([]byte{6, 0, 6, 0, 0, 1, 1, 2})
	assert.ErrorIs(t, err, demosaic.ErrInvalidCFA)
	_, err = cfaFromExifPattern([]byte{2, 0, 2, 0})
	assert.ErrorIs(t, err, demosaic.ErrInvalidCFA)
}

func TestIsMosaicFile(t *testing.T) {
	assert.True(t, IsMosaicFile("a/b/IMG_0001.TIF"))
	assert.True(t, IsMosaicFile("x.cfaz"))
	assert.False(t, IsMosaicFile("config.yaml"))
}

func TestWriters(t *testing.T) {
	m := testMosaic()
	planes, err := m.Demosaic(demosaic.Basic)
	require.NoError(t, err)

	dir := t.TempDir()
	png := filepath.Join(dir, "out.png")
	tif := filepath.Join(dir, "out.tif")
	hdr := filepath.Join(dir, "out.hdr")
	require.NoError(t, WritePNG(png, planes))
	require.NoError(t, WriteTIFF16(tif, planes, false))
	require.NoError(t, WriteHDR(hdr, planes.HDR()))

	for _, f := range []string{png, tif, hdr} {
		st, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, st.Size(), int64(0), f)
	}

	// The TIFF comes back as the same 16 bit values.
	f, err := os.Open(tif)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, planes.Width, img.Bounds().Dx())
	r, _, _, _ := img.At(2, 1).RGBA()
	assert.Equal(t, uint32(planes.RGBA64(false).RGBA64At(2, 1).R), r)

	assert.Error(t, WritePNG(filepath.Join(dir, "missing", "out.png"), planes))
}
