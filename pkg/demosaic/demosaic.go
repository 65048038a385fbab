// Package demosaic reconstructs full color images from Bayer sensor
// mosaics.
//
// A mosaic is a single float32 sample per photosite, normalized to
// [0,1], plus a CFA code saying which color each photosite saw. Every
// method fills the band along the image edge with a simple same-color
// average, then runs its own kernel over the interior in tiles, in
// parallel. The output is three planes, clamped to [0,1].
package demosaic

import(
	"fmt"
	"runtime"

	"github.com/abworrall/rawdev/pkg/ecolor"
)

// Options tune a single call. The zero value is not useful; start from
// the defaults that Demosaic applies and override with Option funcs.
type Options struct {
	Workers  int             // goroutines working on tiles; defaults to NumCPU
	TileSize int             // core edge length of a tile; 0 means the method's own
	Profile  ecolor.Profile  // camera to XYZ, used by AHD's homogeneity test
	Debug    *DebugMaps      // if set, per pixel strategy state is captured here
}

type Option func(*Options)

func WithWorkers(n int) Option              { return func(o *Options) { o.Workers = n } }
func WithTileSize(n int) Option             { return func(o *Options) { o.TileSize = n } }
func WithProfile(p ecolor.Profile) Option   { return func(o *Options) { o.Profile = p } }
func WithDebug(d *DebugMaps) Option         { return func(o *Options) { o.Debug = d } }

func newOptions(opts []Option) *Options {
	o := &Options{
		Workers: runtime.NumCPU(),
		Profile: ecolor.DefaultProfile(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}

// Demosaic reconstructs the red, green and blue planes of a width x
// height mosaic. Invalid input is rejected before any work is done;
// otherwise every pixel of the result gets a value in [0,1].
func Demosaic(pix []float32, width, height int, cfa CFA, method Method, opts ...Option) (*Planes, error) {
	if err := checkInput(pix, width, height, cfa); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	s, err := method.strategy(o)
	if err != nil {
		return nil, err
	}

	if o.Debug != nil {
		o.Debug.init(width, height)
	}

	m := mosaic{pix: pix, width: width, height: height}
	out := NewPlanes(width, height)

	completeBorder(m, cfa, out, s.margin())
	if err := runTiles(m, cfa, s, out, o); err != nil {
		return nil, fmt.Errorf("demosaic %s: %w", method, err)
	}

	return out, nil
}

// DemosaicInterleaved is Demosaic, returning one interleaved buffer.
func DemosaicInterleaved(pix []float32, width, height int, cfa CFA, method Method, layout Layout, opts ...Option) ([]float32, error) {
	p, err := Demosaic(pix, width, height, cfa, method, opts...)
	if err != nil {
		return nil, err
	}
	return p.Interleave(layout), nil
}

func checkInput(pix []float32, width, height int, cfa CFA) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if len(pix) != width*height {
		return fmt.Errorf("%w: have %d samples, want %dx%d", ErrMosaicSize, len(pix), width, height)
	}
	return cfa.Validate()
}
