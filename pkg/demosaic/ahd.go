package demosaic

import(
	"github.com/abworrall/rawdev/pkg/ecolor"
)

// AHD (adaptive homogeneity directed) builds two complete candidate
// images, one interpolating green only horizontally and one only
// vertically, and per pixel keeps the candidate whose CIELab
// neighborhood is more homogeneous.
type ahdStrategy struct {
	lab *ecolor.LabConverter
}

func newAHDStrategy(p ecolor.Profile) ahdStrategy {
	return ahdStrategy{lab: ecolor.NewLabConverter(p)}
}

func (ahdStrategy)halo() int     { return 5 }
func (ahdStrategy)margin() int   { return 2 }
func (ahdStrategy)tileSize() int { return 266 }

const(
	ahdHoriz = 0
	ahdVert  = 1
)

func clip01(v float32) float32 { return min(max(v, 0), 1) }

func (s ahdStrategy)reconstruct(t *tile) {
	t.keepRaw()
	w, rows, cols := t.cols, t.rows, t.cols
	raw := t.raw.pix

	var cand [2][3]plane
	var lab  [2][3]plane
	var homo [2]mask
	for d:=0; d<2; d++ {
		for ch:=0; ch<3; ch++ {
			cand[d][ch] = t.arena.plane(rows, cols)
			lab[d][ch]  = t.arena.plane(rows, cols)
		}
		homo[d] = t.arena.mask(rows, cols)
	}

	// Green, by Hamilton-Adams along one axis, kept between the two
	// greens on that axis.
	for r:=2; r<rows-2; r++ {
		for c:=2; c<cols-2; c++ {
			i := r*w + c
			if t.cfa.IsGreen(r, c) {
				cand[ahdHoriz][Green].pix[i] = raw[i]
				cand[ahdVert][Green].pix[i]  = raw[i]
				continue
			}
			gh := ((raw[i-1] + raw[i] + raw[i+1])*2 - raw[i-2] - raw[i+2]) * 0.25
			gv := ((raw[i-w] + raw[i] + raw[i+w])*2 - raw[i-2*w] - raw[i+2*w]) * 0.25
			cand[ahdHoriz][Green].pix[i] = ulim(gh, raw[i-1], raw[i+1])
			cand[ahdVert][Green].pix[i]  = ulim(gv, raw[i-w], raw[i+w])
		}
	}

	// Red and blue from color differences against each candidate's
	// green, then both candidates into CIELab.
	for d:=0; d<2; d++ {
		g := cand[d][Green].pix
		for r:=3; r<rows-3; r++ {
			for c:=3; c<cols-3; c++ {
				i := r*w + c
				own := t.cfa.ColorAt(r, c)
				if own == Green {
					rowColor := t.cfa.ColorAt(r, c+1)
					cand[d][rowColor].pix[i]   = clip01(raw[i] + (raw[i-1] + raw[i+1] - g[i-1] - g[i+1])*0.5)
					cand[d][2-rowColor].pix[i] = clip01(raw[i] + (raw[i-w] + raw[i+w] - g[i-w] - g[i+w])*0.5)
				} else {
					diag := raw[i-w-1] + raw[i-w+1] + raw[i+w-1] + raw[i+w+1]
					gdiag := g[i-w-1] + g[i-w+1] + g[i+w-1] + g[i+w+1]
					cand[d][2-own].pix[i] = clip01(g[i] + (diag - gdiag)*0.25)
				}
				cand[d][own].pix[i] = raw[i]

				L, a, b := s.lab.Lab(cand[d][Red].pix[i], cand[d][Green].pix[i], cand[d][Blue].pix[i])
				lab[d][0].pix[i], lab[d][1].pix[i], lab[d][2].pix[i] = L, a, b
			}
		}
	}

	// Homogeneity: how many of the four neighbors are within the
	// adaptive lightness and chroma tolerances.
	nb := [4]int{-1, 1, -w, w}
	for r:=4; r<rows-4; r++ {
		for c:=4; c<cols-4; c++ {
			i := r*w + c
			var ldiff, abdiff [2][4]float32
			for d:=0; d<2; d++ {
				L, A, B := lab[d][0].pix, lab[d][1].pix, lab[d][2].pix
				for k, n := range nb {
					ldiff[d][k]  = absf(L[i] - L[i+n])
					abdiff[d][k] = sqr(A[i]-A[i+n]) + sqr(B[i]-B[i+n])
				}
			}
			leps  := min(max(ldiff[ahdHoriz][0], ldiff[ahdHoriz][1]), max(ldiff[ahdVert][2], ldiff[ahdVert][3]))
			abeps := min(max(abdiff[ahdHoriz][0], abdiff[ahdHoriz][1]), max(abdiff[ahdVert][2], abdiff[ahdVert][3]))
			for d:=0; d<2; d++ {
				var n uint8
				for k:=0; k<4; k++ {
					if ldiff[d][k] <= leps && abdiff[d][k] <= abeps {
						n++
					}
				}
				homo[d].pix[i] = n
			}
		}
	}

	// Vote over the 3x3 window; a tie takes the mean of both.
	for r:=5; r<rows-5; r++ {
		for c:=5; c<cols-5; c++ {
			i := r*w + c
			var hm [2]int
			for d:=0; d<2; d++ {
				for dy:=-1; dy<=1; dy++ {
					for dx:=-1; dx<=1; dx++ {
						hm[d] += int(homo[d].at(r+dy, c+dx))
					}
				}
			}

			own := t.cfa.ColorAt(r, c)
			for ch:=0; ch<3; ch++ {
				if ch == own {
					continue
				}
				switch {
				case hm[ahdHoriz] > hm[ahdVert]: t.rgb[ch].pix[i] = cand[ahdHoriz][ch].pix[i]
				case hm[ahdVert] > hm[ahdHoriz]: t.rgb[ch].pix[i] = cand[ahdVert][ch].pix[i]
				default:
					t.rgb[ch].pix[i] = 0.5 * (cand[ahdHoriz][ch].pix[i] + cand[ahdVert][ch].pix[i])
				}
			}
		}
	}
}
