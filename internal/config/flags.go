package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagHeightmap = flag.String("heightmap", "", "Heightmap file: .png, .tga, .gat or raw (raw needs raw_width/raw_height)")
	flagArchive   = flag.String("archive", "", "GRF archive containing the heightmap")
	flagFrames    = flag.Int("frames", 0, "Number of frames to simulate")
	flagSeed      = flag.Int64("seed", 0, "Procedural terrain seed")
	flagParallel  = flag.Bool("parallel", false, "Traverse quadtree branches concurrently")

	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the path given via --write-config, or "".
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagHeightmap != "" {
		cfg.Heightfield.Path = *flagHeightmap
	}
	if *flagArchive != "" {
		cfg.Heightfield.Archive = *flagArchive
	}
	if *flagFrames > 0 {
		cfg.Run.Frames = *flagFrames
	}
	if *flagSeed != 0 {
		cfg.Heightfield.Seed = *flagSeed
	}
	if *flagParallel {
		cfg.LOD.Parallel = true
	}
}
