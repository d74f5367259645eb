package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"plexquant/internal/config"
	"plexquant/internal/imageproc"
	"plexquant/internal/logging"
	"plexquant/internal/metrics"
)

// Swatch is one palette entry in the -palette output.
type Swatch struct {
	Hex    string   `json:"hex"`
	RGB    [3]uint8 `json:"rgb"`
	Pixels int      `json:"pixels"`
}

// Palette is the JSON summary of a quantization.
type Palette struct {
	Input     string   `json:"input"`
	Output    string   `json:"output"`
	Epochs    int      `json:"epochs"`
	Movement  int64    `json:"movement"`
	Converged bool     `json:"converged"`
	Colors    []Swatch `json:"colors"`
}

func main() {
	in := flag.String("in", "", "Input image (png, jpeg or gif)")
	out := flag.String("out", "quantized.png", "Output PNG")
	palettePath := flag.String("palette", "", "Write the palette as JSON to this file (- for stdout)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := logging.FromFlags(*logLevel, *logFormat)

	if *in == "" {
		fmt.Fprintf(os.Stderr, "Error: -in is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, *in, *out, *palettePath, logger); err != nil {
		logger.Error("quantize failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, in, out, palettePath string, logger *logging.Logger) error {
	img, err := imageproc.LoadImage(in)
	if err != nil {
		return err
	}

	analyzer := imageproc.NewAnalyzer(cfg, logger, metrics.Noop{})
	rng := imageproc.FrameRand(cfg.Clustering.Seed, 0)
	q, err := analyzer.Quantize(ctx, img, cfg.Clustering.Clusters, rng)
	if err != nil {
		return err
	}
	if err := imageproc.SavePNG(out, q.Image); err != nil {
		return err
	}
	logger.InfoContext(ctx, "image quantized",
		"input", in,
		"output", out,
		"colors", len(q.Palette),
		"epochs", q.Result.Epochs,
		"converged", q.Result.Converged,
	)

	if palettePath == "" {
		return nil
	}
	p := buildPalette(in, out, q)
	if palettePath == "-" {
		return writePalette(os.Stdout, p)
	}
	f, err := os.Create(palettePath)
	if err != nil {
		return fmt.Errorf("error creating palette file: %w", err)
	}
	if err := writePalette(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func buildPalette(in, out string, q imageproc.Quantization) Palette {
	p := Palette{
		Input:     in,
		Output:    out,
		Epochs:    q.Result.Epochs,
		Movement:  q.Result.Movement,
		Converged: q.Result.Converged,
		Colors:    make([]Swatch, len(q.Palette)),
	}
	for i, c := range q.Palette {
		p.Colors[i] = Swatch{Hex: hex(c), RGB: [3]uint8{c.R, c.G, c.B}, Pixels: q.Counts[i]}
	}
	return p
}

func hex(c color.RGBA) string {
	cc, _ := colorful.MakeColor(c)
	return cc.Hex()
}

func writePalette(w io.Writer, p Palette) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("error encoding palette: %w", err)
	}
	return nil
}
