// Package develop turns mosaic files into finished images: it drives
// the demosaic engine from a YAML config, converts camera color to
// sRGB, and writes the configured outputs.
package develop

import(
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/samber/lo"

	"github.com/abworrall/rawdev/pkg/demosaic"
	"github.com/abworrall/rawdev/pkg/ecolor"
	"github.com/abworrall/rawdev/pkg/rawio"
)

// A Job is a config, and the mosaic files to develop with it.
type Job struct {
	Config
	Inputs []string
}

func NewJob() Job {
	return Job{
		Inputs: []string{},
		Config: NewConfig(),
	}
}

func (j Job)String() string {
	str := fmt.Sprintf("Job %s [\n", j.Method)
	for _, in := range j.Inputs {
		str += fmt.Sprintf("  %s\n", in)
	}
	return str + "]\n"
}

// Develop runs every input through the engine, and returns the files
// it wrote.
func (j *Job)Develop() ([]string, error) {
	if err := j.Config.Validate(); err != nil {
		return nil, fmt.Errorf("develop: %w", err)
	}
	loadOpts, err := j.Config.LoadOptions()
	if err != nil {
		return nil, fmt.Errorf("develop: %w", err)
	}

	files := []string{}
	for _, in := range j.Inputs {
		m, err := rawio.LoadMosaic(in, loadOpts)
		if err != nil {
			return files, fmt.Errorf("develop: %w", err)
		}
		written, err := j.Config.DevelopMosaic(m)
		files = append(files, written...)
		if err != nil {
			return files, fmt.Errorf("develop '%s': %w", in, err)
		}
	}
	return files, nil
}

// OutputBase is the path, minus extension, that outputs for filename
// are written under.
func (c Config)OutputBase(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return filepath.Join(c.OutputDir, base)
}

// DevelopMosaic demosaics one mosaic, and writes out everything the
// config asks for.
func (c Config)DevelopMosaic(m rawio.Mosaic) ([]string, error) {
	if c.Verbosity > 0 {
		log.Printf("Developing %s with %s", m, c.Method)
	}

	var debug *demosaic.DebugMaps
	if c.DumpDebug {
		debug = &demosaic.DebugMaps{}
	}
	opts, err := c.DemosaicOptions(debug)
	if err != nil {
		return nil, err
	}
	profile, err := c.Profile()
	if err != nil {
		return nil, err
	}

	planes, err := m.Demosaic(c.Method, opts...)
	if err != nil {
		return nil, err
	}
	rgb := ToSRGB(planes, profile)
	scene := SceneHDR(planes, profile)

	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("output dir '%s': %v", c.OutputDir, err)
	}
	base := c.OutputBase(m.Filename)
	files := []string{}

	for _, output := range c.Outputs {
		var filename string
		switch output {
		case "png":
			filename = base + ".png"
			err = rawio.WritePNG(filename, rgb)
		case "tiff":
			filename = base + ".tif"
			err = rawio.WriteTIFF16(filename, rgb, c.TIFFGamma)
		case "hdr":
			filename = base + ".hdr"
			err = rawio.WriteHDR(filename, scene)
		case "cfaz":
			filename = base + ".cfaz"
			if samePath(filename, m.Filename) {
				if c.Verbosity > 0 {
					log.Printf("Not writing %s over its own input", filename)
				}
				continue
			}
			err = rawio.WriteCFAZ(filename, m)
		}
		if err != nil {
			return files, err
		}
		files = append(files, filename)
	}

	tmoFiles, err := c.Tonemap(scene, base)
	files = append(files, tmoFiles...)
	if err != nil {
		return files, err
	}

	if debug != nil {
		debugFiles, err := dumpDebugMaps(debug, base, c.Verbosity)
		files = append(files, debugFiles...)
		if err != nil {
			return files, err
		}
	}

	if c.Verbosity > 0 {
		log.Printf("Wrote %v", files)
	}
	return files, nil
}

// ToSRGB applies the profile's camera to sRGB matrix, clamping out of
// gamut colors back onto [0,1].
func ToSRGB(p *demosaic.Planes, profile ecolor.Profile) *demosaic.Planes {
	m := profile.CamToSRGB()
	out := demosaic.NewPlanes(p.Width, p.Height)
	for i := range p.R {
		r, g, b := m.Apply32(p.R[i], p.G[i], p.B[i])
		out.R[i], out.G[i], out.B[i] = unit(r), unit(g), unit(b)
	}
	return out
}

// SceneHDR is the linear sRGB rendition for HDR output and
// tonemapping. Out of gamut negatives are floored; values over 1 are
// kept.
func SceneHDR(p *demosaic.Planes, profile ecolor.Profile) *hdr.RGB {
	img := hdr.NewRGB(image.Rect(0, 0, p.Width, p.Height))
	for y:=0; y<p.Height; y++ {
		for x:=0; x<p.Width; x++ {
			xyz := profile.ToXYZ(p.At(x, y))
			img.SetRGB(x, y, ecolor.HDRRGBFloorAt(ecolor.XYZToSRGB(xyz), 0))
		}
	}
	return img
}

func unit(v float32) float32 {
	return min(max(v, 0), 1)
}

func dumpDebugMaps(debug *demosaic.DebugMaps, base string, verbosity int) ([]string, error) {
	grids := debug.Grids()
	names := lo.Keys(grids)
	sort.Strings(names)

	files := []string{}
	for _, name := range names {
		g := grids[name]
		if verbosity > 1 {
			log.Printf("debug map %s: %s", name, g.Stats())
		}
		filename := fmt.Sprintf("%s-debug-%s.png", base, name)
		if err := g.ToImg(fmt.Sprintf("%s %s", filepath.Base(base), name), filename); err != nil {
			return files, err
		}
		files = append(files, filename)
	}
	return files, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
