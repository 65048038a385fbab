package emath

// 3x3 matrices and vectors, used for color transforms

import(
	"fmt"
	"math"

	"golang.org/x/image/math/f64"  // Will be "image/math/f64" at some point, hopefully make this file redundant
	"gonum.org/v1/gonum/mat"
)

// Use local types so we can hang methods off them
type Vec3 f64.Vec3
type Mat3 f64.Mat3

func Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

func (a Mat3)Mult(b Mat3) Mat3 {
	var c Mat3
	for i:=0; i<3; i++ {
		for j:=0; j<3; j++ {
			c[3*i+j] = a[3*i+0]*b[3*0+j] + a[3*i+1]*b[3*1+j] + a[3*i+2]*b[3*2+j]
		}
	}
	return c
}

func (m Mat3)Apply(v Vec3) Vec3 {
	return Vec3{
		(m[3*0+0]*v[0] + m[3*0+1]*v[1] + m[3*0+2]*v[2]),
		(m[3*1+0]*v[0] + m[3*1+1]*v[1] + m[3*1+2]*v[2]),
		(m[3*2+0]*v[0] + m[3*2+1]*v[1] + m[3*2+2]*v[2]),
	}
}

// Apply32 is Apply for float32 triples, for use in per pixel loops.
func (m Mat3)Apply32(r, g, b float32) (float32, float32, float32) {
	v := m.Apply(Vec3{float64(r), float64(g), float64(b)})
	return float32(v[0]), float32(v[1]), float32(v[2])
}

// Inverse uses gonum; singular matrices are an error.
func (m Mat3)Inverse() (Mat3, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, m[:])); err != nil {
		return Mat3{}, fmt.Errorf("invert %v: %w", m, err)
	}

	var out Mat3
	for i:=0; i<3; i++ {
		for j:=0; j<3; j++ {
			out[3*i+j] = inv.At(i, j)
		}
	}
	return out, nil
}

// NormalizeRows scales each row to sum to one, so that (1,1,1) maps to
// (1,1,1).
func (m Mat3)NormalizeRows() Mat3 {
	for i:=0; i<3; i++ {
		sum := m[3*i+0] + m[3*i+1] + m[3*i+2]
		if sum == 0 {
			continue
		}
		for j:=0; j<3; j++ {
			m[3*i+j] /= sum
		}
	}
	return m
}

func (m Mat3)String() string {
	str := fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*0+0], m[3*0+1], m[3*0+2])
	str += fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*1+0], m[3*1+1], m[3*1+2])
	str += fmt.Sprintf("[%10f, %10f, %10f]\n", m[3*2+0], m[3*2+1], m[3*2+2])
	return str
}
func (v Vec3)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}

// Places the vector on the diagonal of a matrix
func (v Vec3)Diag() Mat3 {
	return Mat3{
		v[0],    0,    0,
		0,    v[1],    0,
		0,       0, v[2],
	}
}

// Places the vector on the diagonal of a matrix, then inverts it
func (v Vec3)InvertDiag() Mat3 {
	return Vec3{1.0 / v[0], 1.0 / v[1], 1.0 / v[2]}.Diag()
}

func (v *Vec3)FloorAt(min float64) {
	if v[0] < min { v[0] = min }
	if v[1] < min { v[1] = min }
	if v[2] < min { v[2] = min }
}

func (v *Vec3)CeilingAt(max float64) {
	if v[0] > max { v[0] = max }
	if v[1] > max { v[1] = max }
	if v[2] > max { v[2] = max }
}

// SRGBEncode applies the sRGB transfer curve to a linear value.
func SRGBEncode(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1/2.4) - 0.055
}

// SRGBEncode clamps each channel onto [0,1] and encodes it.
func (v Vec3)SRGBEncode() Vec3 {
	v.FloorAt(0)
	v.CeilingAt(1)
	return Vec3{SRGBEncode(v[0]), SRGBEncode(v[1]), SRGBEncode(v[2])}
}
