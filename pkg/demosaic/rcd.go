package demosaic

// RCD (ratio corrected demosaicing) decides between vertical and
// horizontal interpolation from high-pass color difference statistics,
// estimates green from low-pass corrected ratios, then fills red and
// blue from color differences, diagonally first and cardinally last.
// The passes depend on each other's output and run strictly in order.
type rcdStrategy struct{}

func (rcdStrategy)halo() int     { return 10 }
func (rcdStrategy)margin() int   { return 2 }
func (rcdStrategy)tileSize() int { return 196 }

// refine picks the 2x2 diagonal mean over the pixel's own
// discrimination when the mean is further from undecided (0.5).
func refine(dir []float32, i, w int) float32 {
	central := dir[i]
	around := 0.25 * (dir[i-w-1] + dir[i-w+1] + dir[i+w-1] + dir[i+w+1])
	if absf(0.5-central) < absf(0.5-around) {
		return around
	}
	return central
}

func (rcdStrategy)reconstruct(t *tile) {
	t.keepRaw()
	w, rows, cols := t.cols, t.rows, t.cols
	raw := t.raw.pix
	G := t.rgb[Green].pix

	vhp   := t.arena.plane(rows, cols).pix // vertical high pass, squared
	hhp   := t.arena.plane(rows, cols).pix
	vhDir := t.arena.plane(rows, cols).pix
	lpf   := t.arena.plane(rows, cols).pix
	php   := t.arena.plane(rows, cols).pix // P (NW-SE) diagonal high pass, squared
	qhp   := t.arena.plane(rows, cols).pix
	pqDir := t.arena.plane(rows, cols).pix

	var dbgVH, dbgPQ []float32
	if t.debug != nil {
		dbgVH, dbgPQ = t.debug.VHDir, t.debug.PQDir
	}

	// Pass 1: vertical/horizontal discrimination.
	for r:=3; r<rows-3; r++ {
		for c:=3; c<cols-3; c++ {
			i := r*w + c
			vhp[i] = sqr((raw[i-3*w] - raw[i-w] - raw[i+w] + raw[i+3*w]) - 3*(raw[i-2*w]+raw[i+2*w]) + 6*raw[i])
			hhp[i] = sqr((raw[i-3] - raw[i-1] - raw[i+1] + raw[i+3]) - 3*(raw[i-2]+raw[i+2]) + 6*raw[i])
		}
	}
	for r:=4; r<rows-4; r++ {
		for c:=4; c<cols-4; c++ {
			i := r*w + c
			vStat := max(epssq, vhp[i-w] + vhp[i] + vhp[i+w])
			hStat := max(epssq, hhp[i-1] + hhp[i] + hhp[i+1])
			vhDir[i] = vStat / (vStat + hStat)
			t.record(dbgVH, r, c, vhDir[i])
		}
	}

	// Pass 2: low pass at the red and blue sites.
	for r:=2; r<rows-2; r++ {
		for c:=2; c<cols-2; c++ {
			if t.cfa.IsGreen(r, c) {
				continue
			}
			i := r*w + c
			lpf[i] = raw[i] +
				0.5 *(raw[i-w] + raw[i+w] + raw[i-1] + raw[i+1]) +
				0.25*(raw[i-w-1] + raw[i-w+1] + raw[i+w-1] + raw[i+w+1])
		}
	}

	// Pass 3: green at the red and blue sites.
	for r:=5; r<rows-5; r++ {
		for c:=5; c<cols-5; c++ {
			if t.cfa.IsGreen(r, c) {
				continue
			}
			i := r*w + c
			disc := refine(vhDir, i, w)

			nGrad := eps + absf(raw[i-w]-raw[i+w]) + absf(raw[i]-raw[i-2*w]) + absf(raw[i-w]-raw[i-3*w]) + absf(raw[i-2*w]-raw[i-4*w])
			sGrad := eps + absf(raw[i+w]-raw[i-w]) + absf(raw[i]-raw[i+2*w]) + absf(raw[i+w]-raw[i+3*w]) + absf(raw[i+2*w]-raw[i+4*w])
			wGrad := eps + absf(raw[i-1]-raw[i+1]) + absf(raw[i]-raw[i-2])   + absf(raw[i-1]-raw[i-3])   + absf(raw[i-2]-raw[i-4])
			eGrad := eps + absf(raw[i+1]-raw[i-1]) + absf(raw[i]-raw[i+2])   + absf(raw[i+1]-raw[i+3])   + absf(raw[i+2]-raw[i+4])

			nEst := raw[i-w] * (1 + (lpf[i]-lpf[i-2*w]) / (eps + lpf[i] + lpf[i-2*w]))
			sEst := raw[i+w] * (1 + (lpf[i]-lpf[i+2*w]) / (eps + lpf[i] + lpf[i+2*w]))
			wEst := raw[i-1] * (1 + (lpf[i]-lpf[i-2])   / (eps + lpf[i] + lpf[i-2]))
			eEst := raw[i+1] * (1 + (lpf[i]-lpf[i+2])   / (eps + lpf[i] + lpf[i+2]))

			vEst := (sGrad*nEst + nGrad*sEst) / (nGrad + sGrad)
			hEst := (eGrad*wEst + wGrad*eEst) / (eGrad + wGrad)

			G[i] = clip01(disc*hEst + (1-disc)*vEst)
		}
	}

	// Pass 4a: diagonal discrimination at the red and blue sites.
	for r:=3; r<rows-3; r++ {
		for c:=3; c<cols-3; c++ {
			if t.cfa.IsGreen(r, c) {
				continue
			}
			i := r*w + c
			php[i] = sqr((raw[i-3*w-3] - raw[i-w-1] - raw[i+w+1] + raw[i+3*w+3]) - 3*(raw[i-2*w-2]+raw[i+2*w+2]) + 6*raw[i])
			qhp[i] = sqr((raw[i-3*w+3] - raw[i-w+1] - raw[i+w-1] + raw[i+3*w-3]) - 3*(raw[i-2*w+2]+raw[i+2*w-2]) + 6*raw[i])
		}
	}
	for r:=4; r<rows-4; r++ {
		for c:=4; c<cols-4; c++ {
			if t.cfa.IsGreen(r, c) {
				continue
			}
			i := r*w + c
			pStat := max(epssq, php[i-w-1] + php[i] + php[i+w+1])
			qStat := max(epssq, qhp[i-w+1] + qhp[i] + qhp[i+w-1])
			pqDir[i] = pStat / (pStat + qStat)
			t.record(dbgPQ, r, c, pqDir[i])
		}
	}

	// Pass 4b: red at blue sites and blue at red sites.
	for r:=7; r<rows-7; r++ {
		for c:=7; c<cols-7; c++ {
			own := t.cfa.ColorAt(r, c)
			if own == Green {
				continue
			}
			i := r*w + c
			X := t.rgb[2-own].pix
			disc := refine(pqDir, i, w)

			nwGrad := eps + absf(X[i-w-1]-X[i+w+1]) + absf(X[i-w-1]-X[i-3*w-3]) + absf(G[i]-G[i-2*w-2])
			neGrad := eps + absf(X[i-w+1]-X[i+w-1]) + absf(X[i-w+1]-X[i-3*w+3]) + absf(G[i]-G[i-2*w+2])
			swGrad := eps + absf(X[i-w+1]-X[i+w-1]) + absf(X[i+w-1]-X[i+3*w-3]) + absf(G[i]-G[i+2*w-2])
			seGrad := eps + absf(X[i-w-1]-X[i+w+1]) + absf(X[i+w+1]-X[i+3*w+3]) + absf(G[i]-G[i+2*w+2])

			nwEst := X[i-w-1] - G[i-w-1]
			neEst := X[i-w+1] - G[i-w+1]
			swEst := X[i+w-1] - G[i+w-1]
			seEst := X[i+w+1] - G[i+w+1]

			pEst := (nwGrad*seEst + seGrad*nwEst) / (nwGrad + seGrad)
			qEst := (neGrad*swEst + swGrad*neEst) / (neGrad + swGrad)

			X[i] = clip01(G[i] + (1-disc)*pEst + disc*qEst)
		}
	}

	// Pass 4c: red and blue at the green sites.
	for r:=10; r<rows-10; r++ {
		for c:=10; c<cols-10; c++ {
			if !t.cfa.IsGreen(r, c) {
				continue
			}
			i := r*w + c
			disc := refine(vhDir, i, w)

			for _, ch := range [2]int{Red, Blue} {
				X := t.rgb[ch].pix

				nGrad := eps + absf(G[i]-G[i-2*w]) + absf(X[i-w]-X[i+w]) + absf(X[i-w]-X[i-3*w])
				sGrad := eps + absf(G[i]-G[i+2*w]) + absf(X[i+w]-X[i-w]) + absf(X[i+w]-X[i+3*w])
				wGrad := eps + absf(G[i]-G[i-2])   + absf(X[i-1]-X[i+1]) + absf(X[i-1]-X[i-3])
				eGrad := eps + absf(G[i]-G[i+2])   + absf(X[i+1]-X[i-1]) + absf(X[i+1]-X[i+3])

				nEst := X[i-w] - G[i-w]
				sEst := X[i+w] - G[i+w]
				wEst := X[i-1] - G[i-1]
				eEst := X[i+1] - G[i+1]

				vEst := (nGrad*sEst + sGrad*nEst) / (nGrad + sGrad)
				hEst := (eGrad*wEst + wGrad*eEst) / (eGrad + wGrad)

				X[i] = clip01(G[i] + (1-disc)*vEst + disc*hEst)
			}
		}
	}
}
