package ecolor

import(
	"fmt"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/rawdev/pkg/emath"
)

// A Profile describes the color space of a camera's (demosaiced,
// white balanced) RGB, by how it maps into XYZ. The XYZ side is scaled
// by the D65 white point, so a neutral camera color maps to (1,1,1).
type Profile struct {
	Name     string
	CamToXYZ emath.Mat3
}

var(
	// Linear sRGB to XYZ(D65), and back.
	// http://www.brucelindbloom.com/index.html?Eqn_RGB_XYZ_Matrix.html
	SRGBToXYZD65 = emath.Mat3{
		0.412453, 0.357580, 0.180423,
		0.212671, 0.715160, 0.072169,
		0.019334, 0.119193, 0.950227,
	}
	XYZD65ToSRGB = emath.Mat3{
		 3.240479, -1.537150, -0.498535,
		-0.969256,  1.875992,  0.041556,
		 0.055648, -0.204043,  1.057311,
	}

	D65White = emath.Vec3{0.950456, 1.0, 1.088754}
)

// DefaultProfile assumes the camera RGB already is linear sRGB.
func DefaultProfile() Profile {
	return Profile{
		Name:     "srgb",
		CamToXYZ: D65White.InvertDiag().Mult(SRGBToXYZD65),
	}
}

// ProfileFromColorMatrix builds a profile from a DNG ColorMatrix (which
// maps XYZ into camera native RGB), given row-major. The inverse is
// rescaled so camera white lands on the white point.
func ProfileFromColorMatrix(name string, colorMatrix []float64) (Profile, error) {
	if len(colorMatrix) != 9 {
		return Profile{}, fmt.Errorf("profile '%s': ColorMatrix has %d entries, want 9", name, len(colorMatrix))
	}

	var xyzToCam emath.Mat3
	copy(xyzToCam[:], colorMatrix)

	camToXYZ, err := xyzToCam.Inverse()
	if err != nil {
		return Profile{}, fmt.Errorf("profile '%s': %w", name, err)
	}

	return Profile{
		Name:     name,
		CamToXYZ: D65White.InvertDiag().Mult(camToXYZ).NormalizeRows(),
	}, nil
}

// ToXYZ maps a camera color into absolute XYZ(D65), Y=1 for white.
func (p Profile)ToXYZ(r, g, b float32) hdrcolor.XYZ {
	xyz := D65White.Diag().Mult(p.CamToXYZ).Apply(emath.Vec3{float64(r), float64(g), float64(b)})
	return hdrcolor.XYZ{X: xyz[0], Y: xyz[1], Z: xyz[2]}
}

// CamToSRGB is the single matrix that takes camera RGB to linear sRGB.
func (p Profile)CamToSRGB() emath.Mat3 {
	return XYZD65ToSRGB.Mult(D65White.Diag()).Mult(p.CamToXYZ)
}

// XYZToSRGB maps XYZ(D65) into linear sRGB. Out of gamut colors come
// back with negative channels; see HDRRGBFloorAt.
func XYZToSRGB(xyz hdrcolor.XYZ) hdrcolor.RGB {
	rgb := XYZD65ToSRGB.Apply(emath.Vec3{xyz.X, xyz.Y, xyz.Z})
	return hdrcolor.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
}

func HDRRGBFloorAt(c1 hdrcolor.RGB, min float64) hdrcolor.RGB {
	c2 := c1
	if c2.R < min { c2.R = min }
	if c2.G < min { c2.G = min }
	if c2.B < min { c2.B = min }
	return c2
}
