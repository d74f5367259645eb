package config

import "flag"

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Clustering.Clusters, "clusters", c.Clustering.Clusters, "Number of palette colors")
	fs.Int64Var(&c.Clustering.Threshold, "threshold", c.Clustering.Threshold, "Stop when total centroid movement in an epoch drops below this")
	fs.IntVar(&c.Clustering.MaxEpochs, "max-epochs", c.Clustering.MaxEpochs, "Maximum k-means epochs per run")
	fs.Uint64Var(&c.Clustering.Seed, "seed", c.Clustering.Seed, "Random seed")
	fs.IntVar(&c.Sampling.PixelsPerFrame, "pixels", c.Sampling.PixelsPerFrame, "Number of random pixels to sample per frame")
	fs.IntVar(&c.Sampling.SampleRate, "sample-rate", c.Sampling.SampleRate, "Process every Nth frame")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Concurrent frame analyses")
	fs.StringVar(&c.Output.Dir, "output", c.Output.Dir, "Directory to save results")
	fs.BoolVar(&c.Output.Compress, "compress", c.Output.Compress, "Write zstd-compressed results")
}

// Parse defines the shared tuning flags plus -config on fs and parses args.
// Values come from Default, then the -config file, then explicit flags.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()
	path := fs.String("config", "", "YAML tuning file")
	cfg.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path != "" {
		loaded, err := Load(*path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
		// Parse again so explicit flags win over the file.
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}
