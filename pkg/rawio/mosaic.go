// Package rawio moves Bayer mosaics and developed images in and out of
// files.
package rawio

import(
	"errors"
	"fmt"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

var(
	ErrNotMosaic    = errors.New("rawio: image is not a single channel mosaic")
	ErrBadContainer = errors.New("rawio: malformed cfaz container")
	ErrUnknownType  = errors.New("rawio: unknown file type")
)

// A Mosaic is one frame of normalized sensor samples, with what we know
// about where it came from.
type Mosaic struct {
	Filename string
	Width    int
	Height   int
	CFA      demosaic.CFA
	Pix      []float32 // row-major, [0,1]
	Make     string
	Model    string
}

func (m Mosaic)String() string {
	return fmt.Sprintf("mosaic[%dx%d %s, %q %q, %s]", m.Width, m.Height, m.CFA, m.Make, m.Model, m.Filename)
}

// Demosaic runs the engine over the mosaic.
func (m Mosaic)Demosaic(method demosaic.Method, opts ...demosaic.Option) (*demosaic.Planes, error) {
	p, err := demosaic.Demosaic(m.Pix, m.Width, m.Height, m.CFA, method, opts...)
	if err != nil {
		return nil, fmt.Errorf("mosaic '%s': %w", m.Filename, err)
	}
	return p, nil
}
