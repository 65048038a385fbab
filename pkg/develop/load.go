package develop

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abworrall/rawdev/pkg/rawio"
)

// LoadFilesAndDirs walks the args, recursing into directories. Mosaic
// files are queued up for Develop; a YAML file replaces the config.
// Mosaics are read later, so flags applied after loading still affect
// how they are decoded.
func (j *Job)LoadFilesAndDirs(args ...string) (error) {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := j.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %w", arg, err)
				}
			}

		default: // is a file, load it
			if err := j.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %w", arg, err)
			}
		}
	}

	return nil
}

func (j *Job)loadFile(filename string) error {
	switch {
	case rawio.IsMosaicFile(filename):
		j.Inputs = append(j.Inputs, filename)

	case strings.ToLower(filepath.Ext(filename)) == ".yaml":
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %w", filename, err)
		}
		j.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)
	}

	return nil
}
