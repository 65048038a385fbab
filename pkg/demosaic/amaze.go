package demosaic

import(
	"math"
	"sync"
)

// AMAZE (aliasing minimization and zipper elimination) interpolates
// green from adaptive ratio or Hamilton-Adams color differences, weighs
// vertical against horizontal with two independent estimators, treats
// fine Nyquist texture separately, corrects along the diagonals, and
// smooths the chroma at the end.
type amazeStrategy struct{}

func (amazeStrategy)halo() int     { return 16 }
func (amazeStrategy)margin() int   { return 2 }
func (amazeStrategy)tileSize() int { return 160 }

const(
	arthresh  = float32(0.75) // ratio estimates are trusted while |1-ratio| is below this
	nyqthresh = float32(0.5)
	clipPt    = float32(1)
	clipPt8   = float32(0.8)
)

// Gaussian stencil weights, normalized over their stencils.
var(
	amazeWeightsOnce sync.Once
	gaussOdd  []float32 // center, diagonal, 2 away, 2 diagonal
	gaussGrad []float32 // center, 1 away, diagonal, 2 away, knight, 2 diagonal
	gaussEven []float32 // 1 away, knight
	gaussQuinc []float32 // as gaussOdd, narrower
)

func gaussWeights(sigma2 float64, dist2, count []int) []float32 {
	w := make([]float64, len(dist2))
	sum := 0.0
	for i, d2 := range dist2 {
		w[i] = math.Exp(-float64(d2) / (2 * sigma2))
		sum += w[i] * float64(count[i])
	}
	out := make([]float32, len(w))
	for i := range w {
		out[i] = float32(w[i] / sum)
	}
	return out
}

func amazeWeights() {
	amazeWeightsOnce.Do(func() {
		gaussOdd   = gaussWeights(2.88, []int{0, 2, 4, 8}, []int{1, 4, 4, 4})
		gaussGrad  = gaussWeights(2.88, []int{0, 1, 2, 4, 5, 8}, []int{1, 4, 4, 4, 8, 4})
		gaussEven  = gaussWeights(2.25, []int{1, 5}, []int{4, 8})
		gaussQuinc = gaussWeights(2.25, []int{0, 2, 4, 8}, []int{1, 4, 4, 4})
		for i := range gaussGrad {
			gaussGrad[i] *= nyqthresh
		}
	})
}

// amazeTile holds the named scratch planes for one tile.
type amazeTile struct {
	*tile
	w        int
	cfa      []float32
	green    []float32

	dirwts0  []float32 // vertical gradient weight
	dirwts1  []float32 // horizontal gradient weight
	delhvsq  []float32 // squared gradient energy
	vcd      []float32 // vertical green minus chroma
	hcd      []float32
	vcdalt   []float32 // Hamilton-Adams only versions
	hcdalt   []float32
	dgintv   []float32 // disagreement between up and down estimates
	dginth   []float32
	cddiffsq []float32
	hvwt     []float32 // weight of the vertical estimate

	nyquist  mask
	nyquist2 mask
	dgrb2h   []float32 // green curvature, Nyquist sites only
	dgrb2v   []float32

	delp     []float32 // diagonal gradients at red/blue sites
	delm     []float32
	sq1p     []float32 // diagonal green variance at green sites
	sq1m     []float32
	rbp      []float32 // opposite chroma along the plus/minus diagonals
	rbm      []float32
	pmwt     []float32 // weight of the plus diagonal
	rbint    []float32

	dgrb     [2][]float32 // green minus red, green minus blue
}

func newAmazeTile(t *tile) *amazeTile {
	p := func() []float32 { return t.arena.plane(t.rows, t.cols).pix }
	a := &amazeTile{
		tile:  t,
		w:     t.cols,
		cfa:   t.raw.pix,
		green: t.rgb[Green].pix,
	}
	a.dirwts0, a.dirwts1, a.delhvsq = p(), p(), p()
	a.vcd, a.hcd, a.vcdalt, a.hcdalt = p(), p(), p(), p()
	a.dgintv, a.dginth, a.cddiffsq, a.hvwt = p(), p(), p(), p()
	a.nyquist, a.nyquist2 = t.arena.mask(t.rows, t.cols), t.arena.mask(t.rows, t.cols)
	a.dgrb2h, a.dgrb2v = p(), p()
	a.delp, a.delm, a.sq1p, a.sq1m = p(), p(), p(), p()
	a.rbp, a.rbm, a.pmwt, a.rbint = p(), p(), p(), p()
	a.dgrb[0], a.dgrb[1] = p(), p()
	return a
}

// eachSite runs fn over the cells at least b away from the tile edge,
// on red/blue sites only, green sites only, or both.
func (a *amazeTile)eachSite(b int, sites int, fn func(r, c, i int)) {
	for r:=b; r<a.rows-b; r++ {
		for c:=b; c<a.cols-b; c++ {
			if sites != anySite && a.cfa0(r, c) != (sites == greenSite) {
				continue
			}
			fn(r, c, r*a.w + c)
		}
	}
}

const(
	anySite    = 0
	chromaSite = 1
	greenSite  = 2
)

func (a *amazeTile)cfa0(r, c int) bool { return a.tile.cfa.IsGreen(r, c) }

func (amazeStrategy)reconstruct(t *tile) {
	amazeWeights()
	t.keepRaw()

	a := newAmazeTile(t)
	a.gradients()
	a.colorDifferences()
	a.reselectAndGuard()
	a.vhWeights()
	a.nyquistTexture()
	a.populateGreen()
	a.diagonals()
	a.chroma()
}

// Phase 1: gradient weights in each direction, and gradient energy.
func (a *amazeTile)gradients() {
	cfa, w := a.cfa, a.w
	a.eachSite(2, anySite, func(r, c, i int) {
		delh := absf(cfa[i+1] - cfa[i-1])
		delv := absf(cfa[i+w] - cfa[i-w])
		a.dirwts0[i] = eps + absf(cfa[i+2*w]-cfa[i]) + absf(cfa[i]-cfa[i-2*w]) + delv
		a.dirwts1[i] = eps + absf(cfa[i+2]-cfa[i])   + absf(cfa[i]-cfa[i-2])   + delh
		a.delhvsq[i] = sqr(delh) + sqr(delv)
	})

	p1, m1 := -w+1, w+1
	a.eachSite(2, chromaSite, func(r, c, i int) {
		a.delp[i] = absf(cfa[i+p1] - cfa[i-p1])
		a.delm[i] = absf(cfa[i+m1] - cfa[i-m1])
	})
	a.eachSite(2, greenSite, func(r, c, i int) {
		a.sq1p[i] = sqr(cfa[i]-cfa[i-p1]) + sqr(cfa[i]-cfa[i+p1])
		a.sq1m[i] = sqr(cfa[i]-cfa[i-m1]) + sqr(cfa[i]-cfa[i+m1])
	})
}

// adaptiveRatio returns the ratio estimate while the ratio is close to
// one, and the Hamilton-Adams estimate otherwise.
func adaptiveRatio(ratio, base, ha float32) float32 {
	if absf(1-ratio) < arthresh {
		return base * ratio
	}
	return ha
}

// Phase 2: cardinal estimates, as green minus chroma at every site.
func (a *amazeTile)colorDifferences() {
	cfa, w := a.cfa, a.w
	d0, d1 := a.dirwts0, a.dirwts1

	a.eachSite(4, anySite, func(r, c, i int) {
		sgn := float32(1)
		if a.cfa0(r, c) {
			sgn = -1
		}

		cru := cfa[i-w] * (d0[i-2*w] + d0[i]) / (d0[i-2*w]*(eps+cfa[i]) + d0[i]*(eps+cfa[i-2*w]))
		crd := cfa[i+w] * (d0[i+2*w] + d0[i]) / (d0[i+2*w]*(eps+cfa[i]) + d0[i]*(eps+cfa[i+2*w]))
		crl := cfa[i-1] * (d1[i-2] + d1[i]) / (d1[i-2]*(eps+cfa[i]) + d1[i]*(eps+cfa[i-2]))
		crr := cfa[i+1] * (d1[i+2] + d1[i]) / (d1[i+2]*(eps+cfa[i]) + d1[i]*(eps+cfa[i+2]))

		guha := min(clipPt, cfa[i-w]) + 0.5*(cfa[i]-cfa[i-2*w])
		gdha := min(clipPt, cfa[i+w]) + 0.5*(cfa[i]-cfa[i+2*w])
		glha := min(clipPt, cfa[i-1]) + 0.5*(cfa[i]-cfa[i-2])
		grha := min(clipPt, cfa[i+1]) + 0.5*(cfa[i]-cfa[i+2])

		guar := adaptiveRatio(cru, cfa[i], guha)
		gdar := adaptiveRatio(crd, cfa[i], gdha)
		glar := adaptiveRatio(crl, cfa[i], glha)
		grar := adaptiveRatio(crr, cfa[i], grha)

		hwt := d1[i-1] / (d1[i-1] + d1[i+1])
		vwt := d0[i-w] / (d0[i+w] + d0[i-w])

		gintvha := vwt*gdha + (1-vwt)*guha
		ginthha := hwt*grha + (1-hwt)*glha

		a.vcd[i] = sgn * (vwt*gdar + (1-vwt)*guar - cfa[i])
		a.hcd[i] = sgn * (hwt*grar + (1-hwt)*glar - cfa[i])
		a.vcdalt[i] = sgn * (gintvha - cfa[i])
		a.hcdalt[i] = sgn * (ginthha - cfa[i])

		// Near the clip point ratios are meaningless.
		if cfa[i] > clipPt8 || gintvha > clipPt8 || ginthha > clipPt8 {
			guar, gdar, glar, grar = guha, gdha, glha, grha
			a.vcd[i], a.hcd[i] = a.vcdalt[i], a.hcdalt[i]
		}

		a.dgintv[i] = min(sqr(guha-gdha), sqr(guar-gdar))
		a.dginth[i] = min(sqr(glha-grha), sqr(glar-grar))
	})
}

// guardGreenSite bounds a color difference at a green site, where the
// estimate is of the chroma, not the green.
func guardGreenSite(cd, raw, n0, n1 float32) float32 {
	est := raw - cd
	bounded := raw - ulim(est, n0, n1)
	if cd > 0 {
		if 3*cd > est+raw {
			cd = bounded
		} else {
			wt := 1 - 3*cd/(eps+est+raw)
			cd = wt*cd + (1-wt)*bounded
		}
	}
	if est > clipPt {
		cd = bounded
	}
	return cd
}

// guardChromaSite bounds a color difference at a red/blue site.
func guardChromaSite(cd, raw, n0, n1 float32) float32 {
	est := cd + raw
	bounded := ulim(est, n0, n1) - raw
	if cd < 0 {
		if 3*cd < -(est+raw) {
			cd = bounded
		} else {
			wt := 1 + 3*cd/(eps+est+raw)
			cd = wt*cd + (1-wt)*bounded
		}
	}
	if est > clipPt {
		cd = bounded
	}
	return cd
}

// Phase 3 and 4: keep the smoother of the ratio and Hamilton-Adams
// series, then bound the result where it overshoots its neighbors.
func (a *amazeTile)reselectAndGuard() {
	cfa, w := a.cfa, a.w
	hcd, vcd := a.hcd, a.vcd

	const(
		altH = 1
		altV = 2
	)
	useAlt := a.arena.mask(a.rows, a.cols)
	a.eachSite(4, anySite, func(r, c, i int) {
		variance := func(x []float32, s int) float32 {
			return 3*(sqr(x[i-s]) + sqr(x[i]) + sqr(x[i+s])) - sqr(x[i-s] + x[i] + x[i+s])
		}
		if variance(a.hcdalt, 2) < variance(hcd, 2) {
			useAlt.pix[i] |= altH
		}
		if variance(a.vcdalt, 2*w) < variance(vcd, 2*w) {
			useAlt.pix[i] |= altV
		}
	})

	a.eachSite(4, anySite, func(r, c, i int) {
		if useAlt.pix[i]&altH != 0 {
			hcd[i] = a.hcdalt[i]
		}
		if useAlt.pix[i]&altV != 0 {
			vcd[i] = a.vcdalt[i]
		}

		if a.cfa0(r, c) {
			hcd[i] = guardGreenSite(hcd[i], cfa[i], cfa[i-1], cfa[i+1])
			vcd[i] = guardGreenSite(vcd[i], cfa[i], cfa[i-w], cfa[i+w])
		} else {
			hcd[i] = guardChromaSite(hcd[i], cfa[i], cfa[i-1], cfa[i+1])
			vcd[i] = guardChromaSite(vcd[i], cfa[i], cfa[i-w], cfa[i+w])
		}

		a.cddiffsq[i] = sqr(vcd[i] - hcd[i])
	})
}

// refineDiagonal replaces a red/blue site's weight with the mean of its
// four diagonal neighbors when that mean is more decided. Every site
// reads the weights as they were before the pass.
func (a *amazeTile)refineDiagonal(x []float32, b int) {
	w := a.w
	prev := a.arena.plane(a.rows, a.cols).pix
	copy(prev, x)
	a.eachSite(b, chromaSite, func(r, c, i int) {
		alt := 0.25 * (prev[i-w-1] + prev[i-w+1] + prev[i+w-1] + prev[i+w+1])
		if absf(0.5-prev[i]) < absf(0.5-alt) {
			x[i] = alt
		}
	})
}

// Phase 5: the vertical/horizontal weight at red/blue sites.
func (a *amazeTile)vhWeights() {
	w := a.w
	vcd, hcd := a.vcd, a.hcd
	d0, d1 := a.dirwts0, a.dirwts1

	spread := func(x []float32, i, s int) float32 {
		mean := 0.25 * (x[i] + x[i+s] + x[i+2*s] + x[i+3*s])
		return sqr(x[i]-mean) + sqr(x[i+s]-mean) + sqr(x[i+2*s]-mean) + sqr(x[i+3*s]-mean)
	}

	a.eachSite(6, chromaSite, func(r, c, i int) {
		hwt := d1[i-1] / (d1[i-1] + d1[i+1])
		vwt := d0[i-w] / (d0[i+w] + d0[i-w])

		// Color difference variance, each way from the pixel.
		vcdvar := epssq + vwt*spread(vcd, i, w) + (1-vwt)*spread(vcd, i, -w)
		hcdvar := epssq + hwt*spread(hcd, i, 1) + (1-hwt)*spread(hcd, i, -1)

		// Fluctuation between the opposing estimates.
		vu := a.dgintv[i] + a.dgintv[i-w] + a.dgintv[i-2*w]
		vd := a.dgintv[i] + a.dgintv[i+w] + a.dgintv[i+2*w]
		hl := a.dginth[i] + a.dginth[i-1] + a.dginth[i-2]
		hr := a.dginth[i] + a.dginth[i+1] + a.dginth[i+2]
		vcdvar1 := epssq + vwt*vd + (1-vwt)*vu
		hcdvar1 := epssq + hwt*hr + (1-hwt)*hl

		varwt  := hcdvar / (vcdvar + hcdvar)
		diffwt := hcdvar1 / (vcdvar1 + hcdvar1)

		if (0.5-varwt)*(0.5-diffwt) > 0 && absf(0.5-diffwt) < absf(0.5-varwt) {
			a.hvwt[i] = varwt
		} else {
			a.hvwt[i] = diffwt
		}
	})
}

// Phase 6: flag Nyquist texture, clean the flags up by majority vote,
// and re-derive the V/H weight over the flagged area.
func (a *amazeTile)nyquistTexture() {
	w := a.w
	cfa := a.cfa
	m1, p1 := w+1, -w+1
	m2, p2 := 2*m1, 2*p1

	diag1 := [4]int{-m1, p1, -p1, m1}
	card2 := [4]int{-2*w, -2, 2, 2*w}
	diag2 := [4]int{-m2, p2, -p2, m2}
	card1 := [4]int{-w, -1, 1, w}
	knight := [8]int{-2*w-1, -2*w+1, -w-2, -w+2, w-2, w+2, 2*w-1, 2*w+1}

	sum := func(x []float32, i int, offs []int) float32 {
		s := float32(0)
		for _, o := range offs {
			s += x[i+o]
		}
		return s
	}

	a.eachSite(6, chromaSite, func(r, c, i int) {
		cd := gaussOdd[0]*a.cddiffsq[i] +
			gaussOdd[1]*sum(a.cddiffsq, i, diag1[:]) +
			gaussOdd[2]*sum(a.cddiffsq, i, card2[:]) +
			gaussOdd[3]*sum(a.cddiffsq, i, diag2[:])
		grad := gaussGrad[0]*a.delhvsq[i] +
			gaussGrad[1]*sum(a.delhvsq, i, card1[:]) +
			gaussGrad[2]*sum(a.delhvsq, i, diag1[:]) +
			gaussGrad[3]*sum(a.delhvsq, i, card2[:]) +
			gaussGrad[4]*sum(a.delhvsq, i, knight[:]) +
			gaussGrad[5]*sum(a.delhvsq, i, diag2[:])
		if cd - grad > 0 {
			a.nyquist.pix[i] = 1
		}
	})

	// At least five of the eight nearest red/blue sites must agree.
	around := [8]int{-2*w, -m1, p1, -2, 2, -p1, m1, 2*w}
	a.eachSite(8, chromaSite, func(r, c, i int) {
		n := 0
		for _, o := range around {
			n += int(a.nyquist.pix[i+o])
		}
		switch {
		case n > 4: a.nyquist2.pix[i] = 1
		case n < 4: a.nyquist2.pix[i] = 0
		default:    a.nyquist2.pix[i] = a.nyquist.pix[i]
		}
		if a.debug != nil {
			a.record(a.debug.Nyquist, r, c, float32(a.nyquist2.pix[i]))
		}
	})

	// Area interpolation: the V/H weight from every flagged red/blue
	// site in the 13x13 window.
	a.eachSite(8, chromaSite, func(r, c, i int) {
		if a.nyquist2.pix[i] == 0 {
			return
		}
		var sumcfa, sumh, sumv, sumsqh, sumsqv, areawt float32
		for dy:=-6; dy<=6; dy+=2 {
			for dx:=-6; dx<=6; dx+=2 {
				j := i + dy*w + dx
				if a.nyquist2.pix[j] == 0 {
					continue
				}
				sumcfa += cfa[j]
				sumh += cfa[j-1] + cfa[j+1]
				sumv += cfa[j-w] + cfa[j+w]
				sumsqh += sqr(cfa[j]-cfa[j-1]) + sqr(cfa[j]-cfa[j+1])
				sumsqv += sqr(cfa[j]-cfa[j-w]) + sqr(cfa[j]-cfa[j+w])
				areawt++
			}
		}
		sumh = sumcfa - 0.5*sumh
		sumv = sumcfa - 0.5*sumv
		areawt *= 0.5
		hcdvar := epssq + absf(areawt*sumsqh - sumh*sumh)
		vcdvar := epssq + absf(areawt*sumsqv - sumv*sumv)
		a.hvwt[i] = hcdvar / (vcdvar + hcdvar)
	})
}

// Green at red/blue sites, then a curvature based refinement where
// Nyquist texture was found.
func (a *amazeTile)populateGreen() {
	w := a.w
	cfa, green := a.cfa, a.green
	m1, p1 := w+1, -w+1
	m2, p2 := 2*m1, 2*p1

	a.refineDiagonal(a.hvwt, 8)
	a.eachSite(8, chromaSite, func(r, c, i int) {
		a.dgrb[0][i] = intp(a.hvwt[i], a.vcd[i], a.hcd[i])
		green[i] = cfa[i] + a.dgrb[0][i]

		if a.nyquist2.pix[i] != 0 {
			a.dgrb2h[i] = sqr(green[i] - 0.5*(green[i-1]+green[i+1]))
			a.dgrb2v[i] = sqr(green[i] - 0.5*(green[i-w]+green[i+w]))
		}
		if a.debug != nil {
			a.record(a.debug.HVWeight, r, c, a.hvwt[i])
		}
	})

	quinc := func(x []float32, i int) float32 {
		return gaussQuinc[0]*x[i] +
			gaussQuinc[1]*(x[i-m1] + x[i+p1] + x[i-p1] + x[i+m1]) +
			gaussQuinc[2]*(x[i-2*w] + x[i-2] + x[i+2] + x[i+2*w]) +
			gaussQuinc[3]*(x[i-m2] + x[i+p2] + x[i-p2] + x[i+m2])
	}
	a.eachSite(8, chromaSite, func(r, c, i int) {
		if a.nyquist2.pix[i] == 0 {
			return
		}
		gvarh := epssq + quinc(a.dgrb2h, i)
		gvarv := epssq + quinc(a.dgrb2v, i)
		a.dgrb[0][i] = (a.hcd[i]*gvarv + a.vcd[i]*gvarh) / (gvarv + gvarh)
		green[i] = cfa[i] + a.dgrb[0][i]
	})
}

// guardBelow bounds an estimate between two neighbors, blending the
// bound in as the estimate drops below ref.
func guardBelow(est, ref, n0, n1 float32) float32 {
	bounded := ulim(est, n0, n1)
	if est < ref {
		if 2*est < ref {
			est = bounded
		} else {
			wt := 2 * (ref - est) / (eps + est + ref)
			est = wt*est + (1-wt)*bounded
		}
	}
	if est > clipPt {
		est = bounded
	}
	return est
}

// Phase 7: diagonal correction.
func (a *amazeTile)diagonals() {
	w := a.w
	cfa, green := a.cfa, a.green
	d0, d1 := a.dirwts0, a.dirwts1
	m1, p1 := w+1, -w+1
	m2, p2 := 2*m1, 2*p1

	near := [4]int{-w, -1, 1, w}
	knight := [8]int{-2*w-1, -2*w+1, -2-w, 2-w, -2+w, 2+w, 2*w-1, 2*w+1}
	variance := func(x []float32, i int) float32 {
		s0, s1 := float32(0), float32(0)
		for _, o := range near {
			s0 += x[i+o]
		}
		for _, o := range knight {
			s1 += x[i+o]
		}
		return epssq + gaussEven[0]*s0 + gaussEven[1]*s1
	}

	a.eachSite(8, chromaSite, func(r, c, i int) {
		ratio := func(o int) float32 { return 2 * cfa[i+o] / (eps + cfa[i] + cfa[i+2*o]) }
		est := func(o int) float32 {
			return adaptiveRatio(ratio(o), cfa[i], cfa[i+o] + 0.5*(cfa[i]-cfa[i+2*o]))
		}
		rbse, rbnw := est(m1), est(-m1)
		rbne, rbsw := est(p1), est(-p1)

		wtse := eps + a.delm[i] + a.delm[i+m1] + a.delm[i+m2]
		wtnw := eps + a.delm[i] + a.delm[i-m1] + a.delm[i-m2]
		wtne := eps + a.delp[i] + a.delp[i+p1] + a.delp[i+p2]
		wtsw := eps + a.delp[i] + a.delp[i-p1] + a.delp[i-p2]

		a.rbm[i] = (wtse*rbnw + wtnw*rbse) / (wtse + wtnw)
		a.rbp[i] = (wtne*rbsw + wtsw*rbne) / (wtne + wtsw)

		rbvarm := variance(a.sq1m, i)
		rbvarp := variance(a.sq1p, i)
		a.pmwt[i] = rbvarm / (rbvarp + rbvarm)

		a.rbp[i] = guardBelow(a.rbp[i], cfa[i], cfa[i-p1], cfa[i+p1])
		a.rbm[i] = guardBelow(a.rbm[i], cfa[i], cfa[i-m1], cfa[i+m1])
	})

	a.refineDiagonal(a.pmwt, 10)
	a.eachSite(10, chromaSite, func(r, c, i int) {
		a.rbint[i] = 0.5 * (cfa[i] + a.rbm[i]*(1-a.pmwt[i]) + a.rbp[i]*a.pmwt[i])
	})

	// Re-interpolate green from the R+B estimate, where the diagonals
	// discriminate better than the cardinal directions did. rbint[i+2*o]
	// limits this to b=12, so cells 8 to 11 from the tile edge keep the
	// cardinal green. The chroma pass reads them, which ties the result
	// to where tile edges fall.
	a.eachSite(12, chromaSite, func(r, c, i int) {
		if absf(0.5-a.pmwt[i]) < absf(0.5-a.hvwt[i]) {
			return
		}
		rbint := a.rbint
		est := func(o int) float32 {
			ratio := 2 * cfa[i+o] / (eps + rbint[i] + rbint[i+2*o])
			return adaptiveRatio(ratio, rbint[i], cfa[i+o] + 0.5*(rbint[i]-rbint[i+2*o]))
		}
		gu, gd, gl, gr := est(-w), est(w), est(-1), est(1)

		gintv := (d0[i-w]*gd + d0[i+w]*gu) / (d0[i+w] + d0[i-w])
		ginth := (d1[i-1]*gr + d1[i+1]*gl) / (d1[i-1] + d1[i+1])
		gintv = guardBelow(gintv, rbint[i], cfa[i-w], cfa[i+w])
		ginth = guardBelow(ginth, rbint[i], cfa[i-1], cfa[i+1])

		green[i] = ginth*(1-a.hvwt[i]) + gintv*a.hvwt[i]
		a.dgrb[0][i] = green[i] - cfa[i]
	})
}

// Phase 8: chroma. Split G-R and G-B, fill the missing one at each
// red/blue site from its diagonals, then both at the green sites from
// the cardinal neighbors, with inverse gradient weights throughout.
func (a *amazeTile)chroma() {
	w := a.w
	green := a.green
	m1, p1 := w+1, -w+1

	a.eachSite(8, chromaSite, func(r, c, i int) {
		if a.tile.cfa.ColorAt(r, c) == Blue {
			a.dgrb[1][i] = a.dgrb[0][i]
			a.dgrb[0][i] = 0
		}
	})

	weight := func(d []float32, i, o int) float32 {
		return 1 / (eps + absf(d[i+o]-d[i-o]) + absf(d[i+o]-d[i+3*o]) + absf(d[i-o]-d[i+3*o]))
	}

	a.eachSite(12, chromaSite, func(r, c, i int) {
		// At a red site fill G-B, at a blue site G-R.
		k := 1
		if a.tile.cfa.ColorAt(r, c) == Blue {
			k = 0
		}
		d := a.dgrb[k]

		var num, den float32
		for _, o := range [4]int{-m1, p1, -p1, m1} {
			oy, ox := -w, -1 // the two cardinal steps that lead away from the pixel
			if o == p1 || o == m1 {
				ox = 1
			}
			if o == m1 || o == -p1 {
				oy = w
			}
			wt := weight(d, i, o)
			num += wt * (1.325*d[i+o] - 0.175*d[i+3*o] - 0.075*d[i+o+2*ox] - 0.075*d[i+o+2*oy])
			den += wt
		}
		d[i] = num / den
	})

	a.eachSite(16, greenSite, func(r, c, i int) {
		for k:=0; k<2; k++ {
			d := a.dgrb[k]
			var num, den float32
			for _, o := range [4]int{-w, w, -1, 1} {
				wt := weight(d, i, o)
				num += wt * d[i+o]
				den += wt
			}
			ch := Red
			if k == 1 {
				ch = Blue
			}
			a.rgb[ch].pix[i] = clampUnit(green[i] - num/den)
		}
	})

	a.eachSite(16, chromaSite, func(r, c, i int) {
		green[i] = clampUnit(green[i])
		if a.tile.cfa.ColorAt(r, c) == Red {
			a.rgb[Blue].pix[i] = clampUnit(green[i] - a.dgrb[1][i])
		} else {
			a.rgb[Red].pix[i] = clampUnit(green[i] - a.dgrb[0][i])
		}
	})
}
