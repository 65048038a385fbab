package develop

import(
	"fmt"
	"log"

	"github.com/samber/lo"

	"github.com/abworrall/rawdev/pkg/demosaic"
	"github.com/abworrall/rawdev/pkg/quality"
	"github.com/abworrall/rawdev/pkg/rawio"
)

// RoundTrip samples the scene through each CFA preset, demosaics it
// with each method, and scores the result against the scene.
func RoundTrip(cfg Config, scene quality.Scene) ([]quality.Report, error) {
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = lo.Filter(demosaic.Methods(), func(m demosaic.Method, _ int) bool { return m != demosaic.None })
	}
	opts, err := cfg.DemosaicOptions(nil)
	if err != nil {
		return nil, fmt.Errorf("roundtrip: %w", err)
	}

	ref := scene.Build(cfg.SceneWidth, cfg.SceneHeight)
	reports := []quality.Report{}

	for _, cfa := range demosaic.Presets() {
		pix := quality.Mosaic(ref, cfa)
		for _, m := range methods {
			got, err := demosaic.Demosaic(pix, ref.Width, ref.Height, cfa, m, opts...)
			if err != nil {
				return reports, fmt.Errorf("roundtrip %s %s %s: %w", scene.Name, cfa, m, err)
			}
			r, err := quality.Compare(ref, got, cfg.Crop)
			if err != nil {
				return reports, fmt.Errorf("roundtrip %s %s %s: %w", scene.Name, cfa, m, err)
			}
			r.Scene, r.Method, r.CFA = scene.Name, m.String(), cfa.String()
			if cfg.Verbosity > 0 {
				log.Printf("%s", r)
			}
			reports = append(reports, r)
		}
	}
	return reports, nil
}

// Pack re-encodes a mosaic file as cfaz, using the config's levels and
// CFA override.
func Pack(cfg Config, in, out string) error {
	opts, err := cfg.LoadOptions()
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	m, err := rawio.LoadMosaic(in, opts)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	if err := rawio.WriteCFAZ(out, m); err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Packed %s into %s", m, out)
	}
	return nil
}
