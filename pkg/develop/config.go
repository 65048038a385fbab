package develop

import(
	"fmt"
	"io/ioutil"
	"log"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/rawdev/pkg/demosaic"
	"github.com/abworrall/rawdev/pkg/ecolor"
	"github.com/abworrall/rawdev/pkg/rawio"
)

var(
	OutputTypes = []string{"png", "tiff", "hdr", "cfaz"}
)

type Config struct {
	Verbosity   int

	Method      demosaic.Method
	CFA         string     // Overrides the pattern in the files, e.g. "RGGB" or "0x94949494"
	Workers     int        // 0 means one per CPU
	TileSize    int        // 0 means the method's own

	BlackLevel  float64    // In raw sample units; both zero means the sample type's range
	WhiteLevel  float64
	ColorMatrix []float64  // DNG ColorMatrix (XYZ to camera native), row-major; empty means sRGB

	Outputs     []string   // Any of OutputTypes
	TIFFGamma   bool       // Gamma encode the TIFF output; PNGs are always encoded
	Tonemapper  string     // "", "all", or one of Tonemappers
	DumpDebug   bool       // Write the per pixel debug maps as PNGs
	OutputDir   string

	// Used by RoundTrip
	SceneWidth  int
	SceneHeight int
	Crop        int
	Methods     []demosaic.Method  // empty means every reconstructing method
}

func NewConfig() Config {
	return Config{
		Method:      demosaic.AMAZE,
		Outputs:     []string{"png"},
		OutputDir:   ".",
		SceneWidth:  256,
		SceneHeight: 192,
		Crop:        8,
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("config parse %s: %w", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Validate checks the fields that name things.
func (c Config)Validate() error {
	if bad := lo.Without(c.Outputs, OutputTypes...); len(bad) > 0 {
		return fmt.Errorf("unknown outputs %v, wanted some of %v", bad, OutputTypes)
	}
	if c.Tonemapper != "" && c.Tonemapper != "all" && !lo.Contains(Tonemappers, c.Tonemapper) {
		return fmt.Errorf("ToneMapper %q not recognized, wanted %s", c.Tonemapper, ListTonemappers())
	}
	if _, _, err := c.CFAOverride(); err != nil {
		return err
	}
	if c.WhiteLevel != 0 && c.WhiteLevel <= c.BlackLevel {
		return fmt.Errorf("white level %f is not above black level %f", c.WhiteLevel, c.BlackLevel)
	}
	return nil
}

// CFAOverride returns the configured CFA, if there is one.
func (c Config)CFAOverride() (demosaic.CFA, bool, error) {
	if strings.TrimSpace(c.CFA) == "" {
		return 0, false, nil
	}
	cfa, err := demosaic.ParseCFA(c.CFA)
	if err != nil {
		return 0, false, fmt.Errorf("config CFA: %w", err)
	}
	return cfa, true, nil
}

func (c Config)Profile() (ecolor.Profile, error) {
	if len(c.ColorMatrix) == 0 {
		return ecolor.DefaultProfile(), nil
	}
	return ecolor.ProfileFromColorMatrix("config", c.ColorMatrix)
}

func (c Config)LoadOptions() (rawio.LoadOptions, error) {
	opts := rawio.LoadOptions{Levels: rawio.Levels{Black: c.BlackLevel, White: c.WhiteLevel}}
	cfa, ok, err := c.CFAOverride()
	if err != nil {
		return opts, err
	}
	opts.CFA, opts.ForceCFA = cfa, ok
	return opts, nil
}

// DemosaicOptions turns the config into engine options. The debug maps
// are only asked for when they will be written out.
func (c Config)DemosaicOptions(debug *demosaic.DebugMaps) ([]demosaic.Option, error) {
	p, err := c.Profile()
	if err != nil {
		return nil, err
	}

	opts := []demosaic.Option{demosaic.WithProfile(p)}
	if c.Workers > 0 {
		opts = append(opts, demosaic.WithWorkers(c.Workers))
	}
	if c.TileSize > 0 {
		opts = append(opts, demosaic.WithTileSize(c.TileSize))
	}
	if debug != nil {
		opts = append(opts, demosaic.WithDebug(debug))
	}
	return opts, nil
}
