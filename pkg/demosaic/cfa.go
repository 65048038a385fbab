package demosaic

import(
	"fmt"
	"strings"
)

// Color channel indices, as used by the planes and the CFA codes.
const(
	Red   = 0
	Green = 1
	Blue  = 2
	Green2 = 3 // only returned by Color4At: the green that shares a row with blue
)

// A CFA is a packed sensor pattern code: 2 bits per position, eight
// rows of two columns, so a 2x2 Bayer tile is one byte repeated four
// times.
type CFA uint32

const(
	BGGR CFA = 0x16161616
	GRBG CFA = 0x61616161
	GBRG CFA = 0x49494949
	RGGB CFA = 0x94949494
)

var presetNames = map[CFA]string{
	BGGR: "BGGR",
	GRBG: "GRBG",
	GBRG: "GBRG",
	RGGB: "RGGB",
}

// Presets lists the four Bayer orderings, in a fixed order.
func Presets() []CFA { return []CFA{RGGB, BGGR, GRBG, GBRG} }

// ColorAt returns Red, Green or Blue for the photosite at (row,col).
// Negative coordinates are fine; only their parity matters.
func (c CFA)ColorAt(row, col int) int {
	return int(uint32(c) >> ((uint((row<<1)&14) | uint(col&1)) << 1) & 3)
}

// Color4At is ColorAt, except the green on the blue rows is Green2.
func (c CFA)Color4At(row, col int) int {
	color := c.ColorAt(row, col)
	if color == Green && c.ColorAt(row, col+1) == Blue {
		return Green2
	}
	return color
}

// IsGreen reports whether (row,col) is a green photosite.
func (c CFA)IsGreen(row, col int) bool { return c.ColorAt(row, col) == Green }

// Offset returns the pattern as seen from an origin moved to (row,col),
// so that c.Offset(r,c).ColorAt(0,0) == c.ColorAt(r,c).
func (c CFA)Offset(row, col int) CFA {
	return pack2x2([2][2]int{
		{c.ColorAt(row, col),   c.ColorAt(row, col+1)},
		{c.ColorAt(row+1, col), c.ColorAt(row+1, col+1)},
	})
}

// Validate checks that the code describes a repeating 2x2 Bayer tile:
// one red, one blue, and two greens on a diagonal.
func (c CFA)Validate() error {
	b := uint32(c) & 0xff
	if uint32(c) != b*0x01010101 {
		return fmt.Errorf("%w: 0x%08x does not repeat a 2x2 tile", ErrInvalidCFA, uint32(c))
	}

	counts := [4]int{}
	for r:=0; r<2; r++ {
		for col:=0; col<2; col++ {
			counts[c.ColorAt(r, col)]++
		}
	}
	if counts[Red] != 1 || counts[Green] != 2 || counts[Blue] != 1 {
		return fmt.Errorf("%w: 0x%08x is not a Bayer pattern", ErrInvalidCFA, uint32(c))
	}
	mainDiag := c.IsGreen(0, 0) && c.IsGreen(1, 1)
	antiDiag := c.IsGreen(0, 1) && c.IsGreen(1, 0)
	if !mainDiag && !antiDiag {
		return fmt.Errorf("%w: 0x%08x has no green diagonal", ErrInvalidCFA, uint32(c))
	}
	return nil
}

func (c CFA)String() string {
	if name, exists := presetNames[c]; exists {
		return name
	}
	return fmt.Sprintf("CFA(0x%08x)", uint32(c))
}

// ParseCFA accepts a preset name (any case) or a hex code like 0x94949494.
func ParseCFA(s string) (CFA, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for code, n := range presetNames {
		if n == name {
			return code, nil
		}
	}

	var v uint32
	if _, err := fmt.Sscanf(strings.ToLower(name), "0x%x", &v); err == nil {
		c := CFA(v)
		return c, c.Validate()
	}

	return 0, fmt.Errorf("%w: '%s'", ErrInvalidCFA, s)
}

// CFAFromPattern builds a code from a 2x2 pattern in the EXIF/DNG
// CFAPattern convention, where 0=red, 1=green, 2=blue, row-major.
func CFAFromPattern(pattern []byte) (CFA, error) {
	if len(pattern) != 4 {
		return 0, fmt.Errorf("%w: pattern has %d entries, want 4", ErrInvalidCFA, len(pattern))
	}
	for _, v := range pattern {
		if v > 2 {
			return 0, fmt.Errorf("%w: pattern color %d", ErrInvalidCFA, v)
		}
	}

	c := pack2x2([2][2]int{
		{int(pattern[0]), int(pattern[1])},
		{int(pattern[2]), int(pattern[3])},
	})
	return c, c.Validate()
}

// pack2x2 repeats a 2x2 tile across all eight rows of the code.
func pack2x2(tile [2][2]int) CFA {
	var code uint32
	for row:=0; row<8; row++ {
		for col:=0; col<2; col++ {
			shift := uint((row<<1) | col) << 1
			code |= uint32(tile[row&1][col] & 3) << shift
		}
	}
	return CFA(code)
}
