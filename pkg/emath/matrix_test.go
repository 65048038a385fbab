package emath

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverse(t *testing.T) {
	m := Mat3{
		2, 0, 1,
		1, 3, 0,
		0, 1, 4,
	}
	inv, err := m.Inverse()
	require.NoError(t, err)

	id := m.Mult(inv)
	for i, v := range Identity() {
		assert.InDelta(t, v, id[i], 1e-12, "element %d", i)
	}

	_, err = Mat3{1, 2, 3, 2, 4, 6, 0, 0, 1}.Inverse()
	assert.Error(t, err)
}

func TestNormalizeRows(t *testing.T) {
	m := Mat3{
		1, 1, 2,
		0, 0, 0,
		3, 0, 1,
	}.NormalizeRows()

	assert.Equal(t, Vec3{1, 0, 1}, m.Apply(Vec3{1, 1, 1}))
}

func TestDiag(t *testing.T) {
	v := Vec3{2, 4, 8}
	assert.Equal(t, Identity(), v.Diag().Mult(v.InvertDiag()))
	assert.Equal(t, Vec3{2, 4, 8}, v.Diag().Apply(Vec3{1, 1, 1}))
}

func TestFloorCeiling(t *testing.T) {
	v := Vec3{-1, 0.5, 2}
	v.FloorAt(0)
	v.CeilingAt(1)
	assert.Equal(t, Vec3{0, 0.5, 1}, v)
}

func TestApply32(t *testing.T) {
	r, g, b := Identity().Apply32(0.25, 0.5, 1)
	assert.Equal(t, float32(0.25), r)
	assert.Equal(t, float32(0.5), g)
	assert.Equal(t, float32(1), b)
}

func TestSRGBEncode(t *testing.T) {
	assert.Equal(t, 0.0, SRGBEncode(0))
	assert.InDelta(t, 1.0, SRGBEncode(1), 1e-9)

	knee := 0.0031308
	assert.InDelta(t, SRGBEncode(knee), SRGBEncode(knee+1e-9), 1e-6)

	prev := -1.0
	for i:=0; i<=1000; i++ {
		v := SRGBEncode(float64(i) / 1000)
		assert.Greater(t, v, prev)
		prev = v
	}

	v := Vec3{-0.5, 0.18, 2}.SRGBEncode()
	assert.Equal(t, 0.0, v[0])
	assert.InDelta(t, 0.4613561, v[1], 1e-6)
	assert.InDelta(t, 1.0, v[2], 1e-9)
}
