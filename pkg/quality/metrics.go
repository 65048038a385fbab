package quality

import(
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

// ErrorScale is how many histogram units make 1.0 of sample error.
const ErrorScale = 1e6

// each calls fn for every pixel that survives the crop.
func each(ref, got *demosaic.Planes, crop int, fn func(i int)) error {
	if ref.Width != got.Width || ref.Height != got.Height {
		return fmt.Errorf("size mismatch %dx%d vs %dx%d", ref.Width, ref.Height, got.Width, got.Height)
	}
	if 2*crop >= ref.Width || 2*crop >= ref.Height {
		return fmt.Errorf("crop %d leaves nothing of %dx%d", crop, ref.Width, ref.Height)
	}
	for y:=crop; y<ref.Height-crop; y++ {
		for x:=crop; x<ref.Width-crop; x++ {
			fn(y*ref.Width + x)
		}
	}
	return nil
}

// PSNR is over all three channels, against a peak of 1.0. Identical
// images score +Inf.
func PSNR(ref, got *demosaic.Planes, crop int) (float64, error) {
	sum, n := 0.0, 0
	err := each(ref, got, crop, func(i int) {
		for c:=0; c<3; c++ {
			d := float64(ref.Plane(c)[i] - got.Plane(c)[i])
			sum += d*d
			n++
		}
	})
	if err != nil {
		return 0, fmt.Errorf("psnr: %w", err)
	}
	if sum == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(float64(n)/sum), nil
}

// DeltaE returns the mean and worst CIE76 color difference, treating
// the planes as linear sRGB.
func DeltaE(ref, got *demosaic.Planes, crop int) (mean, worst float64, err error) {
	sum, n := 0.0, 0
	err = each(ref, got, crop, func(i int) {
		c1 := colorful.LinearRgb(float64(ref.R[i]), float64(ref.G[i]), float64(ref.B[i]))
		c2 := colorful.LinearRgb(float64(got.R[i]), float64(got.G[i]), float64(got.B[i]))
		d := 100 * c1.DistanceLab(c2) // colorful's L runs 0..1
		sum += d
		worst = math.Max(worst, d)
		n++
	})
	if err != nil {
		return 0, 0, fmt.Errorf("deltaE: %w", err)
	}
	return sum / float64(n), worst, nil
}

// ErrorHistogram records the absolute per channel error, in units of
// 1/ErrorScale.
func ErrorHistogram(ref, got *demosaic.Planes, crop int) (*hdrhistogram.Histogram, error) {
	h := hdrhistogram.New(1, ErrorScale, 3)
	var recErr error
	err := each(ref, got, crop, func(i int) {
		for c:=0; c<3; c++ {
			d := math.Abs(float64(ref.Plane(c)[i] - got.Plane(c)[i]))
			if err := h.RecordValue(int64(math.Round(math.Min(d, 1) * ErrorScale))); err != nil && recErr == nil {
				recErr = err
			}
		}
	})
	if err == nil {
		err = recErr
	}
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	return h, nil
}
