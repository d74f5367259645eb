package imageproc

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"os"

	"plexquant/internal/kmeans"
)

// MinQuantizeClusters is the smallest palette Quantize accepts.
const MinQuantizeClusters = 2

// Quantization is the output of Quantize.
type Quantization struct {
	Image   *image.RGBA
	Palette []color.RGBA
	// Counts[i] is the number of pixels painted with Palette[i].
	Counts []int
	Result kmeans.Result
}

// Quantize clusters every pixel of img into k colors and repaints the image
// with each pixel's nearest palette entry.
func (a *Analyzer) Quantize(ctx context.Context, img image.Image, k int, rng kmeans.Rand) (Quantization, error) {
	if k < MinQuantizeClusters {
		return Quantization{}, fmt.Errorf("cluster count must be at least %d, got %d", MinQuantizeClusters, k)
	}
	pixels := PixelsFromImage(img)
	if len(pixels) == 0 {
		return Quantization{}, ErrEmptyFrame
	}

	centroids := SeedCentroids(pixels, k, rng)
	res, err := a.cluster(ctx, centroids, pixels, rng)
	if err != nil {
		return Quantization{}, fmt.Errorf("clustering image: %w", err)
	}

	palette := make([]color.RGBA, len(centroids))
	for i, c := range centroids {
		palette[i] = color.RGBA{R: clampChannel(c[0]), G: clampChannel(c[1]), B: clampChannel(c[2]), A: 255}
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	counts := make([]int, len(centroids))
	width := bounds.Dx()
	for i, px := range pixels {
		idx, _ := kmeans.Nearest(px, centroids)
		counts[idx]++
		out.SetRGBA(bounds.Min.X+i%width, bounds.Min.Y+i/width, palette[idx])
	}

	return Quantization{Image: out, Palette: palette, Counts: counts, Result: res}, nil
}

func clampChannel(v int64) uint8 {
	return uint8(max(0, min(255, v)))
}

// LoadImage decodes a PNG, JPEG or GIF file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding image %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating image file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding png: %w", err)
	}
	return f.Close()
}
