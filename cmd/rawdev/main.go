package main

import(
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/rawdev/pkg/demosaic"
	"github.com/abworrall/rawdev/pkg/develop"
	"github.com/abworrall/rawdev/pkg/quality"
)

// Flag values; applied over the config only when given, so a YAML file
// among the args keeps its settings otherwise.
var(
	fVerbosity  int
	fMethod     demosaic.Method
	fCFA        string
	fWorkers    int
	fTileSize   int
	fBlack      float64
	fWhite      float64
	fOutputDir  string

	fOutputs    []string
	fTonemapper string
	fDumpDebug  bool
	fTIFFGamma  bool

	fScene      string
	fWidth      int
	fHeight     int
	fCrop       int
	fMethods    []demosaic.Method
)

func main() {
	log.SetFlags(log.Ldate|log.Ltime)
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rawdev",
		Short:         "Demosaic and develop Bayer sensor mosaics",
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.IntVarP(&fVerbosity, "verbose", "v", 0, "how verbose to get")
	pf.Var(methodValue{&fMethod}, "method", "demosaic method: "+strings.Join(demosaic.MethodNames(), ", "))
	pf.Var(cfaValue{&fCFA}, "cfa", "override the file's CFA pattern (RGGB, BGGR, GRBG, GBRG or a hex code)")
	pf.IntVar(&fWorkers, "workers", 0, "tile workers (0 means one per CPU)")
	pf.IntVar(&fTileSize, "tilesize", 0, "tile core size (0 means the method's own)")
	pf.Float64Var(&fBlack, "black", 0, "black level, in raw sample units")
	pf.Float64Var(&fWhite, "white", 0, "white level, in raw sample units")
	pf.StringVarP(&fOutputDir, "outdir", "o", ".", "where to write outputs")

	root.AddCommand(developCmd(), roundtripCmd(), packCmd(), methodsCmd())
	return root
}

func developCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "develop [files|dirs...]",
		Short: "Demosaic mosaic files (.tif, .tiff, .cfaz); a .yaml arg sets the config",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j := develop.NewJob()
			if err := j.LoadFilesAndDirs(args...); err != nil {
				return err
			}
			applyFlags(cmd, &j.Config)

			if j.Verbosity > 0 {
				log.Printf("Final configuration:-\n\n%s\n%s", j.Config.AsYaml(), j)
			}

			files, err := j.Develop()
			if err != nil {
				return err
			}
			log.Printf("rawdev wrote %d files", len(files))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&fOutputs, "outputs", []string{"png"}, "outputs to write: "+strings.Join(develop.OutputTypes, ", "))
	f.StringVar(&fTonemapper, "tonemapper", "", "write tonemapped previews: all, or one of "+develop.ListTonemappers())
	f.BoolVar(&fDumpDebug, "debug", false, "write the per pixel debug maps as PNGs")
	f.BoolVar(&fTIFFGamma, "tiffgamma", false, "gamma encode the TIFF output")
	return cmd
}

func roundtripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roundtrip [config.yaml]",
		Short: "Mosaic synthetic scenes, demosaic them, and report the reconstruction error as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			j := develop.NewJob()
			if err := j.LoadFilesAndDirs(args...); err != nil {
				return err
			}
			applyFlags(cmd, &j.Config)

			scenes := quality.Scenes()
			if fScene != "all" {
				s, err := quality.LookupScene(fScene)
				if err != nil {
					return err
				}
				scenes = []quality.Scene{s}
			}

			all := []quality.Report{}
			for _, s := range scenes {
				reports, err := develop.RoundTrip(j.Config, s)
				if err != nil {
					return err
				}
				all = append(all, reports...)
			}

			b, err := yaml.Marshal(all)
			if err != nil {
				return fmt.Errorf("report yaml: %v", err)
			}
			_, err = os.Stdout.Write(b)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&fScene, "scene", "all", "scene to use: all, or one of "+strings.Join(quality.SceneNames(), ", "))
	f.IntVar(&fWidth, "width", 256, "scene width")
	f.IntVar(&fHeight, "height", 192, "scene height")
	f.IntVar(&fCrop, "crop", 8, "border to leave out of the scores")
	f.Var(methodsValue{&fMethods}, "methods", "comma separated methods to compare (default all but none)")
	return cmd
}

func packCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <in.tif> <out.cfaz>",
		Short: "Normalize a mosaic TIFF into a compressed .cfaz file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := develop.NewConfig()
			applyFlags(cmd, &cfg)
			return develop.Pack(cfg, args[0], args[1])
		},
	}
}

func methodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the demosaic methods",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range demosaic.MethodNames() {
				fmt.Println(name)
			}
		},
	}
}

// applyFlags overrides the config with any flags given on the command
// line.
func applyFlags(cmd *cobra.Command, c *develop.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("verbose")    { c.Verbosity = fVerbosity }
	if changed("method")     { c.Method = fMethod }
	if changed("cfa")        { c.CFA = fCFA }
	if changed("workers")    { c.Workers = fWorkers }
	if changed("tilesize")   { c.TileSize = fTileSize }
	if changed("black")      { c.BlackLevel = fBlack }
	if changed("white")      { c.WhiteLevel = fWhite }
	if changed("outdir")     { c.OutputDir = fOutputDir }

	if changed("outputs")    { c.Outputs = fOutputs }
	if changed("tonemapper") { c.Tonemapper = fTonemapper }
	if changed("debug")      { c.DumpDebug = fDumpDebug }
	if changed("tiffgamma")  { c.TIFFGamma = fTIFFGamma }

	if changed("width")      { c.SceneWidth = fWidth }
	if changed("height")     { c.SceneHeight = fHeight }
	if changed("crop")       { c.Crop = fCrop }
	if changed("methods")    { c.Methods = fMethods }
}
