// Package quality builds synthetic full color scenes, and measures how
// well a demosaiced image reconstructs them.
package quality

import(
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"

	"github.com/abworrall/rawdev/pkg/demosaic"
	"github.com/abworrall/rawdev/pkg/emath"
)

// A Scene builds a known full color image of a given size.
type Scene struct {
	Name  string
	Build func(width, height int) *demosaic.Planes
}

func Scenes() []Scene {
	return []Scene{
		{"ramp",         Ramp},
		{"stepedge",     func(w, h int) *demosaic.Planes { return StepEdge(w, h, 0.2, 0.8) }},
		{"zoneplate",    ZonePlate},
		{"colorchecker", ColorChecker},
		{"blobs",        func(w, h int) *demosaic.Planes { return Blobs(w, h, 1) }},
	}
}

func SceneNames() []string {
	return lo.Map(Scenes(), func(s Scene, _ int) string { return s.Name })
}

func LookupScene(name string) (Scene, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	s, ok := lo.Find(Scenes(), func(s Scene) bool { return s.Name == name })
	if !ok {
		return Scene{}, fmt.Errorf("no scene named '%s' (have %v)", name, SceneNames())
	}
	return s, nil
}

// Ramp runs red up to the right, blue down the image, and green along
// the diagonal.
func Ramp(width, height int) *demosaic.Planes {
	p := demosaic.NewPlanes(width, height)
	for y:=0; y<height; y++ {
		v := frac(y, height)
		for x:=0; x<width; x++ {
			u := frac(x, width)
			p.Set(x, y, u, 0.5*(u+v), v)
		}
	}
	return p
}

func frac(i, n int) float32 {
	if n < 2 {
		return 0.5
	}
	return float32(i) / float32(n-1)
}

// StepEdge is a neutral vertical edge, dark to the left of width/2 and
// light from there on.
func StepEdge(width, height int, dark, light float32) *demosaic.Planes {
	p := demosaic.NewPlanes(width, height)
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			v := dark
			if x >= width/2 {
				v = light
			}
			p.Set(x, y, v, v, v)
		}
	}
	return p
}

// ZonePlate is a neutral circular chirp, centered, whose frequency
// climbs to Nyquist at the furthest corner.
func ZonePlate(width, height int) *demosaic.Planes {
	p := demosaic.NewPlanes(width, height)
	cx, cy := float64(width-1)/2, float64(height-1)/2
	rmax := math.Hypot(cx, cy)
	if rmax == 0 {
		rmax = 1
	}
	k := math.Pi / (2 * rmax)

	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			v := float32(0.5 + 0.4*math.Cos(k*(dx*dx + dy*dy)))
			p.Set(x, y, v, v, v)
		}
	}
	return p
}

// The 24 patches of the classic ColorChecker chart, sRGB.
var colorCheckerHex = []string{
	"#735244", "#c29682", "#627a9d", "#576c43", "#8580b1", "#67bdaa",
	"#d67e2c", "#505ba6", "#c15a63", "#5e3c6c", "#9dbc40", "#e0a32e",
	"#383d96", "#469449", "#af363c", "#e7c71f", "#bb5695", "#0885a1",
	"#f3f3f2", "#c8c8c8", "#a0a0a0", "#7a7a79", "#555555", "#343434",
}

// ColorChecker tiles the image with the 6x4 chart, in linear RGB.
func ColorChecker(width, height int) *demosaic.Planes {
	patches := lo.Map(colorCheckerHex, func(hex string, _ int) [3]float32 {
		c, _ := colorful.Hex(hex)
		r, g, b := c.LinearRgb()
		return [3]float32{float32(r), float32(g), float32(b)}
	})

	p := demosaic.NewPlanes(width, height)
	for y:=0; y<height; y++ {
		row := y * 4 / height
		for x:=0; x<width; x++ {
			c := patches[row*6 + x*6/width]
			p.Set(x, y, c[0], c[1], c[2])
		}
	}
	return p
}

// Blobs is smooth, uncorrelated color: random noise per channel,
// blurred down to soft gradients and rescaled onto [0.1,0.9].
func Blobs(width, height int, seed int64) *demosaic.Planes {
	rng := rand.New(rand.NewSource(seed))
	p := demosaic.NewPlanes(width, height)

	// Coarse noise first, so a handful of blurs make big blobs.
	const cell = 8
	for c:=0; c<3; c++ {
		coarse := emath.NewFloatGrid((width+cell-1)/cell, (height+cell-1)/cell)
		for y:=0; y<coarse.Dy(); y++ {
			for x:=0; x<coarse.Dx(); x++ {
				coarse.Set(x, y, rng.Float64())
			}
		}

		fg := emath.NewFloatGrid(width, height)
		for y:=0; y<height; y++ {
			for x:=0; x<width; x++ {
				fg.Set(x, y, coarse.Get(x/cell, y/cell))
			}
		}
		for i:=0; i<3*cell; i++ {
			fg = fg.GaussianBlur()
		}
		fg.Normalize()

		plane := p.Plane(c)
		for i, v := range fg.To32() {
			plane[i] = 0.1 + 0.8*v
		}
	}
	return p
}

// Mosaic samples a full color image through a CFA.
func Mosaic(p *demosaic.Planes, cfa demosaic.CFA) []float32 {
	pix := make([]float32, p.Width*p.Height)
	for y:=0; y<p.Height; y++ {
		for x:=0; x<p.Width; x++ {
			i := y*p.Width + x
			pix[i] = p.Plane(cfa.ColorAt(y, x))[i]
		}
	}
	return pix
}
