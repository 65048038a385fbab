package rawio

import(
	"encoding/binary"
	"fmt"
	"image"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

// Levels maps raw sample values onto [0,1]. Zero values mean "use the
// full range of the sample type".
type Levels struct {
	Black float64
	White float64
}

// LoadOptions control how a TIFF becomes a Mosaic.
type LoadOptions struct {
	Levels
	CFA      demosaic.CFA // used when the file doesn't carry a CFAPattern; 0 means RGGB
	ForceCFA bool         // use CFA even if the file carries a pattern
}

// LoadTIFF reads a single channel 8 or 16 bit TIFF as a mosaic. EXIF
// metadata is optional; when present it supplies the camera and the
// CFA pattern.
func LoadTIFF(filename string, opts LoadOptions) (Mosaic, error) {
	m := Mosaic{Filename: filename, CFA: opts.CFA}
	if m.CFA == 0 {
		m.CFA = demosaic.RGGB
	}

	// First, the EXIF metadata. Plenty of mosaic TIFFs don't have any.
	if reader, err := os.Open(filename); err != nil {
		return m, fmt.Errorf("open+r exif '%s': %v", filename, err)
	} else {
		ex, err := exif.Decode(reader)
		reader.Close()
		if err == nil {
			if tag,err := ex.Get(exif.Make); err == nil {
				m.Make, _ = tag.StringVal()
			}
			if tag,err := ex.Get(exif.Model); err == nil {
				m.Model, _ = tag.StringVal()
			}
			if tag,err := ex.Get(exif.CFAPattern); err == nil && !opts.ForceCFA {
				cfa, err := cfaFromExifPattern(tag.Val)
				if err != nil {
					return m, fmt.Errorf("exif CFAPattern '%s': %w", filename, err)
				}
				m.CFA = cfa
			}
		}
	}

	// Re-open the file, now for the image data
	reader, err := os.Open(filename)
	if err != nil {
		return m, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	img, err := tiff.Decode(reader)
	if err != nil {
		return m, fmt.Errorf("tiff loading '%s': %v", filename, err)
	}

	if err := m.fromGray(img, opts.Levels); err != nil {
		return m, fmt.Errorf("tiff '%s': %w", filename, err)
	}
	return m, nil
}

func (m *Mosaic)fromGray(img image.Image, lv Levels) error {
	b := img.Bounds()
	m.Width, m.Height = b.Dx(), b.Dy()
	m.Pix = make([]float32, m.Width*m.Height)

	var sample func(x, y int) float64
	switch g := img.(type) {
	case *image.Gray16:
		sample = func(x, y int) float64 { return float64(g.Gray16At(x, y).Y) }
		if lv.White == 0 {
			lv.White = 0xFFFF
		}
	case *image.Gray:
		sample = func(x, y int) float64 { return float64(g.GrayAt(x, y).Y) }
		if lv.White == 0 {
			lv.White = 0xFF
		}
	default:
		return fmt.Errorf("%w: got %T", ErrNotMosaic, img)
	}

	if lv.White <= lv.Black {
		return fmt.Errorf("white level %f is not above black level %f", lv.White, lv.Black)
	}
	scale := 1 / (lv.White - lv.Black)

	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			v := (sample(b.Min.X+x, b.Min.Y+y) - lv.Black) * scale
			m.Pix[y*m.Width + x] = float32(min(max(v, 0), 1))
		}
	}
	return nil
}

// cfaFromExifPattern decodes the EXIF CFAPattern value: two shorts for
// the repeat size (columns, then rows) in the file's byte order, then
// one byte per cell. Only 2x2 Bayer patterns are accepted.
func cfaFromExifPattern(val []byte) (demosaic.CFA, error) {
	if len(val) < 8 {
		return 0, fmt.Errorf("%w: CFAPattern has %d bytes", demosaic.ErrInvalidCFA, len(val))
	}

	dims := func(order binary.ByteOrder) (int, int) {
		return int(order.Uint16(val[0:2])), int(order.Uint16(val[2:4]))
	}
	cols, rows := dims(binary.LittleEndian)
	if cols != 2 || rows != 2 {
		cols, rows = dims(binary.BigEndian)
	}
	if cols != 2 || rows != 2 {
		return 0, fmt.Errorf("%w: CFAPattern repeats %dx%d, want 2x2", demosaic.ErrInvalidCFA, cols, rows)
	}

	return demosaic.CFAFromPattern(val[4:8])
}
