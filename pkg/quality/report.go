package quality

import(
	"fmt"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

// A Report scores one reconstruction of a scene. Errors are in sample
// units, so 0.01 is one percent of full scale.
type Report struct {
	Scene      string  `yaml:"scene"`
	Method     string  `yaml:"method"`
	CFA        string  `yaml:"cfa"`
	PSNR       float64 `yaml:"psnr"`
	DeltaEMean float64 `yaml:"deltae_mean"`
	DeltaEMax  float64 `yaml:"deltae_max"`
	ErrP50     float64 `yaml:"err_p50"`
	ErrP99     float64 `yaml:"err_p99"`
	ErrMax     float64 `yaml:"err_max"`
}

func (r Report)String() string {
	return fmt.Sprintf("%-12s %-6s %s: PSNR %6.2fdB, dE %5.2f (max %6.2f), err p50 %.4f p99 %.4f max %.4f",
		r.Scene, r.Method, r.CFA, r.PSNR, r.DeltaEMean, r.DeltaEMax, r.ErrP50, r.ErrP99, r.ErrMax)
}

// Compare runs all the metrics.
func Compare(ref, got *demosaic.Planes, crop int) (Report, error) {
	r := Report{}

	var err error
	if r.PSNR, err = PSNR(ref, got, crop); err != nil {
		return r, err
	}
	if r.DeltaEMean, r.DeltaEMax, err = DeltaE(ref, got, crop); err != nil {
		return r, err
	}

	h, err := ErrorHistogram(ref, got, crop)
	if err != nil {
		return r, err
	}
	r.ErrP50 = float64(h.ValueAtQuantile(50)) / ErrorScale
	r.ErrP99 = float64(h.ValueAtQuantile(99)) / ErrorScale
	r.ErrMax = float64(h.Max()) / ErrorScale

	return r, nil
}
