package demosaic

import(
	"github.com/abworrall/rawdev/pkg/emath"
)

// DebugMaps captures per pixel strategy state at full resolution. Maps
// a method does not compute keep their neutral fill (0.5, or 0 for
// Nyquist).
type DebugMaps struct {
	Width   int
	Height  int

	HVWeight []float32 // AMAZE: weight of the vertical estimate at red/blue sites
	Nyquist  []float32 // AMAZE: 1 where Nyquist texture was detected
	VHDir    []float32 // RCD: vertical/horizontal discrimination
	PQDir    []float32 // RCD: diagonal discrimination, red/blue sites
}

func (d *DebugMaps)init(width, height int) {
	n := width * height
	d.Width, d.Height = width, height
	d.HVWeight = filled(n, 0.5)
	d.Nyquist  = make([]float32, n)
	d.VHDir    = filled(n, 0.5)
	d.PQDir    = filled(n, 0.5)
}

func filled(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Grids returns the maps as float grids, keyed by a short name.
func (d *DebugMaps)Grids() map[string]emath.FloatGrid {
	grids := map[string]emath.FloatGrid{}
	for name, pix := range map[string][]float32{
		"hvweight": d.HVWeight,
		"nyquist":  d.Nyquist,
		"vhdir":    d.VHDir,
		"pqdir":    d.PQDir,
	} {
		if pix == nil {
			continue
		}
		grids[name] = emath.NewFloatGridFrom32(d.Width, d.Height, pix)
	}
	return grids
}
