package demosaic

import "sync"

// VNG4 (variable number of gradients) measures a gradient in each of
// the eight compass directions, drops the directions that cross an edge,
// and interpolates along the rest. Greens on red rows and on blue rows
// are kept apart as two colors until the very end.

// compass steps, clockwise from north. Odd indices are diagonals.
var compass = [8][2]int{
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1},
}

// A vngTerm is one absolute difference between two same color samples,
// added to the gradient of every direction in its bitmask.
type vngTerm struct {
	ay, ax int
	by, bx int
	weight float32
	dirs   uint8
}

type vngTable struct {
	terms []vngTerm
	norm  [8]float32 // total term weight per direction
}

var(
	vngOnce   sync.Once
	vngTables [2]vngTable // indexed by 1 if the center is green
)

func vngTablesFor(centerGreen bool) *vngTable {
	vngOnce.Do(func() {
		vngTables[0] = buildVNGTable(false)
		vngTables[1] = buildVNGTable(true)
	})
	if centerGreen {
		return &vngTables[1]
	}
	return &vngTables[0]
}

// buildVNGTable enumerates, for every direction, the same color pairs in
// the 5x5 window that step along that direction through the center's
// neighborhood. Pairs two steps apart always share a color; diagonal
// neighbors only do when both are green. On-axis pairs weigh 1, pairs on
// the adjacent parallel lines weigh 1/2.
func buildVNGTable(centerGreen bool) vngTable {
	isGreen := func(dy, dx int) bool { return ((dy+dx)&1 == 0) == centerGreen }
	inWindow := func(v int) bool { return v >= -2 && v <= 2 }

	t := vngTable{}
	for k, s := range compass {
		diagonal := k&1 == 1
		for ay:=-2; ay<=2; ay++ {
			for ax:=-2; ax<=2; ax++ {
				for step:=1; step<=2; step++ {
					by, bx := ay+step*s[0], ax+step*s[1]
					if !inWindow(by) || !inWindow(bx) {
						continue
					}
					if step == 1 && (!diagonal || !isGreen(ay, ax)) {
						continue
					}

					// The pair has to straddle the center along the direction...
					pa := ay*s[0] + ax*s[1]
					pb := by*s[0] + bx*s[1]
					if pa > 0 || pb <= 0 {
						continue
					}
					// ...and run within one line of it.
					off := ay*s[1] - ax*s[0]
					if off < -1 || off > 1 {
						continue
					}

					weight := float32(1)
					if off != 0 {
						weight = 0.5
					}
					t.add(vngTerm{ay: ay, ax: ax, by: by, bx: bx, weight: weight}, k)
				}
			}
		}
	}
	return t
}

func (t *vngTable)add(term vngTerm, dir int) {
	t.norm[dir] += term.weight
	for i := range t.terms {
		e := &t.terms[i]
		if e.ay == term.ay && e.ax == term.ax && e.by == term.by && e.bx == term.bx && e.weight == term.weight {
			e.dirs |= 1 << uint(dir)
			return
		}
	}
	term.dirs = 1 << uint(dir)
	t.terms = append(t.terms, term)
}

type vng4Strategy struct{}

func (vng4Strategy)halo() int     { return 2 }
func (vng4Strategy)margin() int   { return 2 }
func (vng4Strategy)tileSize() int { return 260 }

func (vng4Strategy)reconstruct(t *tile) {
	t.keepRaw()
	w := t.cols
	raw := t.raw.pix

	var color4 [2][2]int
	for r:=0; r<2; r++ {
		for c:=0; c<2; c++ {
			color4[r][c] = t.cfa.Color4At(r, c)
		}
	}

	// Bilinear estimates of all four colors, for the neighbors' values.
	var lin [4]plane
	for i := range lin {
		lin[i] = t.arena.plane(t.rows, t.cols)
	}
	for r:=1; r<t.rows-1; r++ {
		for c:=1; c<t.cols-1; c++ {
			var sum [4]float32
			var n   [4]float32
			for dy:=-1; dy<=1; dy++ {
				for dx:=-1; dx<=1; dx++ {
					if dy == 0 && dx == 0 {
						continue
					}
					col := color4[(r+dy)&1][(c+dx)&1]
					sum[col] += raw[(r+dy)*w + c + dx]
					n[col]++
				}
			}
			i := r*w + c
			own := color4[r&1][c&1]
			for col:=0; col<4; col++ {
				switch {
				case col == own: lin[col].pix[i] = raw[i]
				case n[col] > 0: lin[col].pix[i] = sum[col] / n[col]
				}
			}
		}
	}

	// Index deltas for this tile's stride.
	var step [8]int
	for k, s := range compass {
		step[k] = s[0]*w + s[1]
	}
	type delta struct{ a, b int }
	var deltas [2][]delta
	for g:=0; g<2; g++ {
		table := vngTablesFor(g == 1)
		deltas[g] = make([]delta, len(table.terms))
		for j, term := range table.terms {
			deltas[g][j] = delta{term.ay*w + term.ax, term.by*w + term.bx}
		}
	}

	for r:=2; r<t.rows-2; r++ {
		for c:=2; c<t.cols-2; c++ {
			i := r*w + c
			own := color4[r&1][c&1]
			green := own == Green || own == Green2
			g := 0
			if green {
				g = 1
			}
			table := vngTablesFor(green)

			var grad [8]float32
			for j, term := range table.terms {
				diff := absf(raw[i+deltas[g][j].a] - raw[i+deltas[g][j].b]) * term.weight
				for k:=0; k<8; k++ {
					if term.dirs&(1<<uint(k)) != 0 {
						grad[k] += diff
					}
				}
			}

			gmin, gmax := grad[0]/table.norm[0], grad[0]/table.norm[0]
			for k:=0; k<8; k++ {
				grad[k] /= table.norm[k]
				gmin = min(gmin, grad[k])
				gmax = max(gmax, grad[k])
			}
			thold := 1.5*gmin + 0.5*(gmax+gmin)

			var sum [4]float32
			var num float32
			for k:=0; k<8; k++ {
				if grad[k] > thold {
					continue
				}
				wt := float32(1)
				if k&1 == 1 {
					wt = 0.5
				}
				n := i + step[k]
				for col:=0; col<4; col++ {
					if col == own {
						sum[col] += wt * 0.5 * (raw[i] + raw[i+2*step[k]])
					} else {
						sum[col] += wt * lin[col].pix[n]
					}
				}
				num += wt
			}

			var est [4]float32
			for col:=0; col<4; col++ {
				est[col] = raw[i] + (sum[col]-sum[own])/num
			}

			if own != Red {
				t.rgb[Red].pix[i] = est[Red]
			}
			if own != Blue {
				t.rgb[Blue].pix[i] = est[Blue]
			}
			if !green {
				t.rgb[Green].pix[i] = 0.5 * (est[Green] + est[Green2])
			}
		}
	}
}
