package demosaic

// noneStrategy passes each sample through to its own channel and leaves
// the other two at zero. It is there to look at the raw mosaic.
type noneStrategy struct{}

func (noneStrategy)halo() int     { return 0 }
func (noneStrategy)margin() int   { return 0 }
func (noneStrategy)tileSize() int { return 256 }

func (noneStrategy)reconstruct(t *tile) { t.keepRaw() }

// basicStrategy is bilinear interpolation: each missing color is the
// mean of its nearest samples in the 3x3 neighborhood.
type basicStrategy struct{}

func (basicStrategy)halo() int     { return 1 }
func (basicStrategy)margin() int   { return 1 }
func (basicStrategy)tileSize() int { return 258 }

func (basicStrategy)reconstruct(t *tile) {
	t.keepRaw()
	w := t.cols
	raw := t.raw.pix

	for r:=1; r<t.rows-1; r++ {
		for c:=1; c<t.cols-1; c++ {
			i := r*w + c
			cross := (raw[i-w] + raw[i+w] + raw[i-1] + raw[i+1]) * 0.25
			diag  := (raw[i-w-1] + raw[i-w+1] + raw[i+w-1] + raw[i+w+1]) * 0.25
			horiz := (raw[i-1] + raw[i+1]) * 0.5
			vert  := (raw[i-w] + raw[i+w]) * 0.5

			switch own := t.cfa.ColorAt(r, c); own {
			case Green:
				// The row neighbors carry one color, the column neighbors the other.
				rowColor := t.cfa.ColorAt(r, c+1)
				t.rgb[rowColor].pix[i]   = horiz
				t.rgb[2-rowColor].pix[i] = vert
			default:
				t.rgb[Green].pix[i]  = cross
				t.rgb[2-own].pix[i]  = diag
			}
		}
	}
}
