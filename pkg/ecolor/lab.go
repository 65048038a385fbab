package ecolor

import(
	"math"
	"sync"
)

// A LabConverter maps camera RGB in [0,1] to CIELab, quickly: the cube
// root is a table lookup over 0..65535.
type LabConverter struct {
	m [9]float32
}

var(
	cbrtOnce  sync.Once
	cbrtTable []float32
)

func labCbrt() []float32 {
	cbrtOnce.Do(func() {
		cbrtTable = make([]float32, 0x10000)
		for i := range cbrtTable {
			r := float64(i) / 65535.0
			if r > 0.008856 {
				cbrtTable[i] = float32(math.Cbrt(r))
			} else {
				cbrtTable[i] = float32(7.787*r + 16.0/116.0)
			}
		}
	})
	return cbrtTable
}

func NewLabConverter(p Profile) *LabConverter {
	lc := &LabConverter{}
	for i, v := range p.CamToXYZ {
		lc.m[i] = float32(v)
	}
	labCbrt()
	return lc
}

func lookupCbrt(v float32) float32 {
	i := int(v*65535 + 0.5)
	if i < 0 {
		i = 0
	} else if i > 0xFFFF {
		i = 0xFFFF
	}
	return cbrtTable[i]
}

// Lab returns L in [0,100] and the a, b opponent axes.
func (lc *LabConverter)Lab(r, g, b float32) (float32, float32, float32) {
	m := &lc.m
	fx := lookupCbrt(m[0]*r + m[1]*g + m[2]*b)
	fy := lookupCbrt(m[3]*r + m[4]*g + m[5]*b)
	fz := lookupCbrt(m[6]*r + m[7]*g + m[8]*b)
	return 116*fy - 16, 500*(fx - fy), 200*(fy - fz)
}
