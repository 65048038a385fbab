package demosaic

// completeBorder fills every pixel within margin of the image edge. A
// pixel keeps its own sample; the other two channels are the mean of
// the same color samples in its 3x3 neighborhood, clipped to the image.
// When the interior is empty that is every pixel.
func completeBorder(m mosaic, cfa CFA, out *Planes, margin int) {
	if margin <= 0 {
		return
	}

	for y:=0; y<m.height; y++ {
		for x:=0; x<m.width; x++ {
			if y >= margin && y < m.height-margin && x >= margin && x < m.width-margin {
				x = m.width - margin - 1 // skip over the interior of this row
				continue
			}
			completePixel(m, cfa, out, x, y)
		}
	}
}

func completePixel(m mosaic, cfa CFA, out *Planes, x, y int) {
	var sum [3]float32
	var n   [3]int

	// Images one pixel wide or tall do not have every color in a 3x3
	// window, so widen it until they show up or the image runs out.
	for radius:=1; ; radius++ {
		sum, n = [3]float32{}, [3]int{}
		for yy:=max(y-radius, 0); yy<=min(y+radius, m.height-1); yy++ {
			for xx:=max(x-radius, 0); xx<=min(x+radius, m.width-1); xx++ {
				c := cfa.ColorAt(yy, xx)
				sum[c] += m.pix[yy*m.width + xx]
				n[c]++
			}
		}
		if (n[Red] > 0 && n[Green] > 0 && n[Blue] > 0) || radius >= max(m.width, m.height) {
			break
		}
	}

	own := cfa.ColorAt(y, x)
	sample := m.pix[y*m.width + x]
	var rgb [3]float32
	for c:=0; c<3; c++ {
		switch {
		case c == own:  rgb[c] = sample
		case n[c] > 0:  rgb[c] = sum[c] / float32(n[c])
		default:        rgb[c] = sample
		}
	}

	o := y*out.Width + x
	out.R[o] = clampUnit(rgb[Red])
	out.G[o] = clampUnit(rgb[Green])
	out.B[o] = clampUnit(rgb[Blue])
}
