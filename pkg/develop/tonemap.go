package develop

import(
	"fmt"
	"log"

	"github.com/fogleman/gg"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"
)

var(
	Tonemappers = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

// Tonemap writes an LDR preview of img per configured operator, named
// after base. It returns the files it wrote.
func (c Config)Tonemap(img hdr.Image, base string) ([]string, error) {
	names := []string{c.Tonemapper}
	switch c.Tonemapper {
	case "":    return nil, nil
	case "all": names = Tonemappers
	}

	files := []string{}
	for _, name := range names {
		op, err := setupTonemapper(name, img)
		if err != nil {
			return files, err
		}
		if c.Verbosity > 0 {
			log.Printf("Tonemapping: %s", name)
		}

		filename := fmt.Sprintf("%s-tmo-%s.png", base, name)
		if err := gg.SavePNG(filename, op.Perform()); err != nil {
			return files, fmt.Errorf("tmo %s '%s': %v", name, filename, err)
		}
		files = append(files, filename)
	}
	return files, nil
}

// The tmo defaults are tuned for scenes with a lot more dynamic range
// than a single frame has; pull them back so highlights survive.
func setupTonemapper(name string, img hdr.Image) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op := tmo.NewDefaultDrago03(img)
		op.Bias = 0.85
		return op, nil

	case "durand":
		return tmo.NewDefaultDurand(img), nil

	case "icam06":
		op := tmo.NewDefaultICam06(img)
		op.Contrast    = 0.7
		op.MaxClipping = 0.999
		return op, nil

	case "linear":
		return tmo.NewLinear(img), nil

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(img)
		op.Chromatic = 0.0
		op.Light     = 0.5
		return op, nil
	}

	return nil, fmt.Errorf("ToneMapper %q not recognized, wanted %s", name, ListTonemappers())
}
