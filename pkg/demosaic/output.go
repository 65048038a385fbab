package demosaic

import(
	"image"
	"image/color"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/rawdev/pkg/emath"
)

// Planes holds a reconstructed image as three row-major planes.
type Planes struct {
	Width  int
	Height int
	R      []float32
	G      []float32
	B      []float32
}

func NewPlanes(width, height int) *Planes {
	n := width * height
	return &Planes{
		Width:  width,
		Height: height,
		R:      make([]float32, n),
		G:      make([]float32, n),
		B:      make([]float32, n),
	}
}

// Plane returns the plane for Red, Green or Blue.
func (p *Planes)Plane(c int) []float32 {
	switch c {
	case Red:   return p.R
	case Green: return p.G
	default:    return p.B
	}
}

func (p *Planes)At(x, y int) (r, g, b float32) {
	i := y*p.Width + x
	return p.R[i], p.G[i], p.B[i]
}

func (p *Planes)Set(x, y int, r, g, b float32) {
	i := y*p.Width + x
	p.R[i], p.G[i], p.B[i] = r, g, b
}

// Layout picks the channel order of an interleaved buffer.
type Layout int

const(
	LayoutRGB  Layout = iota // three floats per pixel
	LayoutRGBA               // four floats per pixel, alpha is 1
)

func (l Layout)Channels() int {
	if l == LayoutRGBA {
		return 4
	}
	return 3
}

// Interleave packs the planes into a single buffer, pixel by pixel.
func (p *Planes)Interleave(layout Layout) []float32 {
	nc := layout.Channels()
	out := make([]float32, p.Width*p.Height*nc)
	for i:=0; i<p.Width*p.Height; i++ {
		out[i*nc+0] = p.R[i]
		out[i*nc+1] = p.G[i]
		out[i*nc+2] = p.B[i]
		if nc == 4 {
			out[i*nc+3] = 1
		}
	}
	return out
}

// HDR wraps the planes as a linear HDR image, e.g. for RGBE encoding
// or tonemapping.
func (p *Planes)HDR() *hdr.RGB {
	img := hdr.NewRGB(image.Rect(0, 0, p.Width, p.Height))
	for y:=0; y<p.Height; y++ {
		for x:=0; x<p.Width; x++ {
			r, g, b := p.At(x, y)
			img.SetRGB(x, y, hdrcolor.RGB{R: float64(r), G: float64(g), B: float64(b)})
		}
	}
	return img
}

// RGBA64 converts to 16 bits per channel, optionally sRGB gamma encoded.
func (p *Planes)RGBA64(gamma bool) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, p.Width, p.Height))
	for y:=0; y<p.Height; y++ {
		for x:=0; x<p.Width; x++ {
			r, g, b := p.At(x, y)
			v := emath.Vec3{float64(r), float64(g), float64(b)}
			if gamma {
				v = v.SRGBEncode()
			}
			v.FloorAt(0)
			v.CeilingAt(1)
			img.SetRGBA64(x, y, color.RGBA64{
				R: uint16(v[0]*0xFFFF + 0.5),
				G: uint16(v[1]*0xFFFF + 0.5),
				B: uint16(v[2]*0xFFFF + 0.5),
				A: 0xFFFF,
			})
		}
	}
	return img
}
