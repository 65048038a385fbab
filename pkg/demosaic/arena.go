package demosaic

// An arena hands out the scratch buffers for one tile at a time. It
// remembers how much the last tiles needed, so after the first tile a
// worker runs off a single backing allocation per element type.
type arena struct {
	f32      []float32
	u8       []uint8
	usedF32  int
	usedU8   int
	peakF32  int
	peakU8   int
}

// reset releases every view handed out so far; they must not be used
// afterwards.
func (a *arena)reset() {
	if a.peakF32 > len(a.f32) { a.f32 = make([]float32, a.peakF32) }
	if a.peakU8  > len(a.u8)  { a.u8  = make([]uint8, a.peakU8) }
	a.usedF32, a.usedU8 = 0, 0
}

// plane returns a zeroed rows x cols float view.
func (a *arena)plane(rows, cols int) plane {
	n := rows * cols
	var pix []float32
	if a.usedF32+n <= len(a.f32) {
		pix = a.f32[a.usedF32 : a.usedF32+n : a.usedF32+n]
		clear(pix)
	} else {
		pix = make([]float32, n)
	}
	a.usedF32 += n
	a.peakF32 = max(a.peakF32, a.usedF32)
	return plane{pix: pix, stride: cols}
}

// mask returns a zeroed rows x cols byte view.
func (a *arena)mask(rows, cols int) mask {
	n := rows * cols
	var pix []uint8
	if a.usedU8+n <= len(a.u8) {
		pix = a.u8[a.usedU8 : a.usedU8+n : a.usedU8+n]
		clear(pix)
	} else {
		pix = make([]uint8, n)
	}
	a.usedU8 += n
	a.peakU8 = max(a.peakU8, a.usedU8)
	return mask{pix: pix, stride: cols}
}

// A plane is a row-major float32 view into an arena.
type plane struct {
	pix    []float32
	stride int
}

func (p plane)at(r, c int) float32     { return p.pix[r*p.stride + c] }
func (p plane)set(r, c int, v float32) { p.pix[r*p.stride + c] = v }

// A mask is a row-major byte view into an arena, for flags and counts.
type mask struct {
	pix    []uint8
	stride int
}

func (m mask)at(r, c int) uint8     { return m.pix[r*m.stride + c] }
func (m mask)set(r, c int, v uint8) { m.pix[r*m.stride + c] = v }
