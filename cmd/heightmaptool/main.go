// heightmaptool inspects terrain heightmaps and the GRF archives holding them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/lighting"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/viewer"
	"github.com/Faultbox/midgard-terrain/pkg/grf"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "list", "ls":
		err = cmdList(os.Stdout, args)
	case "extract", "x":
		err = cmdExtract(os.Stdout, args)
	case "preview":
		err = cmdPreview(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `heightmaptool - terrain heightmap utility

Usage:
  heightmaptool <command> [options]

Commands:
  info [-archive a.grf] <heightmap>               Show grid size and sample range
  list <file.grf> [pattern]                        List heightmaps in an archive
  extract <file.grf> <path> [output]               Extract heightmap(s) to a directory
  preview [-archive a.grf] [-shade] <heightmap> [output]
                                                   Write a 16-bit grayscale PNG

Raw heightmaps need -raw-width and -raw-height (and -bit-depth 8 for 8-bit data).

Examples:
  heightmaptool info -raw-width 1025 -raw-height 1025 height.r16
  heightmaptool list data.grf "*.gat"
  heightmaptool extract data.grf data/prontera.gat ./maps
  heightmaptool preview -archive data.grf data/prontera.gat ./previews`)
}

// heightmapFlags registers the options info and preview share.
func heightmapFlags(fs *flag.FlagSet) *config.HeightfieldConfig {
	hc := &config.HeightfieldConfig{}
	fs.StringVar(&hc.Archive, "archive", "", "GRF archive containing the heightmap")
	fs.IntVar(&hc.RawWidth, "raw-width", 0, "Raw heightmap width in samples")
	fs.IntVar(&hc.RawHeight, "raw-height", 0, "Raw heightmap height in samples")
	fs.IntVar(&hc.BitDepth, "bit-depth", 16, "Raw heightmap bit depth (8 or 16)")
	return hc
}

// loadField reads the heightmap into a unit field with elevations 0..1.
func loadField(hc *config.HeightfieldConfig) (*terrain.Heightfield, error) {
	field := terrain.NewHeightfield(1, 0, 1)
	if err := viewer.LoadHeightmap(field, *hc); err != nil {
		return nil, fmt.Errorf("loading %s: %w", hc.Path, err)
	}
	return field, nil
}

func cmdInfo(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	hc := heightmapFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: heightmaptool info [-archive file.grf] <heightmap>", errUsage)
	}
	hc.Path = fs.Arg(0)

	field, err := loadField(hc)
	if err != nil {
		return err
	}
	lo, hi := field.RegionRange(-0.5, -0.5, 0.5, 0.5)

	fmt.Fprintf(w, "Heightmap: %s\n", hc.Path)
	if hc.Archive != "" {
		fmt.Fprintf(w, "Archive:   %s\n", hc.Archive)
	}
	fmt.Fprintf(w, "Format:    %s\n", hc.Format())
	fmt.Fprintf(w, "Grid:      %dx%d\n", field.Width(), field.Height())
	fmt.Fprintf(w, "Range:     %.4f .. %.4f\n", lo, hi)
	return nil
}

// isHeightmap reports whether an archive entry looks like height data.
func isHeightmap(name string) bool {
	if texture.IsImage(name) {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gat", ".raw", ".r8", ".r16":
		return true
	}
	return false
}

func cmdList(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	all := fs.Bool("all", false, "List every file, not only heightmaps")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: heightmaptool list <file.grf> [pattern]", errUsage)
	}

	archive, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range archive.List() {
		if !*all && !isHeightmap(f) {
			continue
		}
		if pattern != "" && !matches(pattern, f) {
			continue
		}
		fmt.Fprintln(w, f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}
	return nil
}

// matches compares pattern against the base name as a glob, or against the
// whole path as a substring. Archive paths are already lower case.
func matches(pattern, path string) bool {
	if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
		return true
	}
	return strings.Contains(path, pattern)
}

func cmdExtract(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: heightmaptool extract <file.grf> <path> [output_dir]", errUsage)
	}

	filePath := fs.Arg(1)
	outputDir := "."
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}

	archive, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	if !strings.Contains(filePath, "*") {
		return extractFile(w, archive, filePath, filepath.Join(outputDir, baseName(filePath)))
	}

	pattern := strings.ToLower(filePath)
	extracted := 0
	for _, f := range archive.List() {
		if ok, _ := filepath.Match(pattern, filepath.Base(f)); !ok {
			continue
		}
		// Preserve directory structure
		if err := extractFile(w, archive, f, filepath.Join(outputDir, f)); err != nil {
			return err
		}
		extracted++
	}
	fmt.Fprintf(w, "Extracted %d files\n", extracted)
	return nil
}

// baseName returns the last element of an archive or disk path.
func baseName(path string) string {
	return filepath.Base(strings.ReplaceAll(path, "\\", "/"))
}

func extractFile(w io.Writer, archive *grf.Archive, name, outputPath string) error {
	data, err := archive.Read(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	fmt.Fprintf(w, "Extracted: %s (%d bytes)\n", outputPath, len(data))
	return nil
}

func cmdPreview(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	hc := heightmapFlags(fs)
	prefix := fs.String("prefix", "heightmap", "Output filename prefix")
	shade := fs.Bool("shade", false, "Write a hillshade instead of raw heights")
	relief := fs.Float64("relief", 0, "Hillshade elevation range in texels (0 = a quarter of the grid width)")
	sunLon := fs.Float64("sun-lon", lighting.DefaultLongitude, "Sun longitude in degrees")
	sunLat := fs.Float64("sun-lat", lighting.DefaultLatitude, "Sun latitude in degrees")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: heightmaptool preview [-archive file.grf] <heightmap> [output_dir]", errUsage)
	}
	hc.Path = fs.Arg(0)
	outputDir := "."
	if fs.NArg() > 1 {
		outputDir = fs.Arg(1)
	}

	field, err := loadField(hc)
	if err != nil {
		return err
	}

	base := baseName(hc.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	samples := field.Samples()
	if *shade {
		name += "_shade"
		samples, err = hillshade(field, float32(*relief), float32(*sunLon), float32(*sunLat))
		if err != nil {
			return err
		}
	}

	path, err := debug.NewSnapshotter(outputDir, *prefix).
		CaptureHeightfield(name, samples, field.Width(), field.Height())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote: %s\n", path)
	return nil
}

// hillshade lights the normalized field laid out one world unit per texel,
// with its samples spanning relief units of elevation.
func hillshade(field *terrain.Heightfield, relief, sunLon, sunLat float32) ([]float32, error) {
	w, h := field.Width(), field.Height()
	if relief <= 0 {
		relief = float32(w) / 4
	}

	scaled := terrain.NewHeightfield(float32(w), 0, relief)
	if err := scaled.LoadElevations(field.Samples(), w, h); err != nil {
		return nil, err
	}
	sun := lighting.SunDirection(sunLon, sunLat)
	return lighting.Hillshade(scaled, scaled.Extent(), w, h, sun, lighting.DefaultAmbient), nil
}
