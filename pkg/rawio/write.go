package rawio

import(
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/tiff"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

// LoadMosaic picks a loader from the file extension.
func LoadMosaic(filename string, opts LoadOptions) (Mosaic, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff": return LoadTIFF(filename, opts)
	case ".cfaz":         return ReadCFAZ(filename)
	}
	return Mosaic{}, fmt.Errorf("%w: '%s'", ErrUnknownType, filename)
}

// IsMosaicFile reports whether LoadMosaic knows the file's extension.
func IsMosaicFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff", ".cfaz": return true
	}
	return false
}

// WritePNG writes a 16 bit, sRGB gamma encoded PNG.
func WritePNG(filename string, p *demosaic.Planes) error {
	if err := gg.SavePNG(filename, p.RGBA64(true)); err != nil {
		return fmt.Errorf("png '%s': %v", filename, err)
	}
	return nil
}

// WriteTIFF16 writes a deflate compressed 16 bit TIFF, linear or gamma
// encoded.
func WriteTIFF16(filename string, p *demosaic.Planes, gamma bool) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create '%s': %v", filename, err)
	}
	if err := tiff.Encode(f, p.RGBA64(gamma), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return fmt.Errorf("tiff '%s': %v", filename, err)
	}
	return f.Close()
}

// WriteHDR writes a linear image as a Radiance RGBE file.
func WriteHDR(filename string, img hdr.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create '%s': %v", filename, err)
	}
	if err := rgbe.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("rgbe '%s': %v", filename, err)
	}
	return f.Close()
}
