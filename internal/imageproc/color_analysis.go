package imageproc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"plexquant/internal/config"
	"plexquant/internal/kmeans"
	"plexquant/internal/logging"
	"plexquant/internal/metrics"
)

// ErrEmptyFrame is returned for frames without a single whole pixel.
var ErrEmptyFrame = errors.New("frame has no pixels")

// FrameAnalysis is the palette of one frame, sorted by proportion.
type FrameAnalysis struct {
	Colors      [][3]int  `json:"colors"`
	Proportions []float64 `json:"proportions"`
	Hues        []float64 `json:"hues"`
	Saturations []float64 `json:"saturations"`
	// MeanHue is the proportion-weighted circular mean hue in OpenCV units.
	MeanHue   float64 `json:"mean_hue"`
	Epochs    int     `json:"epochs"`
	Converged bool    `json:"converged"`
}

// Analyzer extracts palettes with mini-batch k-means. It holds no per-call
// state and may be shared between goroutines as long as each call gets its
// own random source.
type Analyzer struct {
	Clusters   int
	SampleSize int
	KMeans     kmeans.Config
	Logger     *logging.Logger
	Metrics    metrics.Collector
}

// NewAnalyzer builds an Analyzer from cfg. Nil logger or collector disable
// the respective output.
func NewAnalyzer(cfg config.Config, logger *logging.Logger, collector metrics.Collector) *Analyzer {
	if logger == nil {
		logger = logging.Noop()
	}
	if collector == nil {
		collector = metrics.Noop{}
	}
	return &Analyzer{
		Clusters:   cfg.Clustering.Clusters,
		SampleSize: cfg.Sampling.PixelsPerFrame,
		KMeans:     cfg.KMeans(),
		Logger:     logger,
		Metrics:    collector,
	}
}

// cluster runs k-means on pixels starting from centroids and records the outcome.
func (a *Analyzer) cluster(ctx context.Context, centroids, pixels []kmeans.Vec, rng kmeans.Rand) (kmeans.Result, error) {
	start := time.Now()
	res, err := kmeans.Run(centroids, pixels, rng,
		kmeans.WithConfig(a.KMeans),
		kmeans.WithObserver(a.Logger.EpochObserver(ctx)),
	)
	a.Metrics.RecordRun(res, time.Since(start), err)
	a.Logger.LogClustering(ctx, len(centroids), len(pixels), res, err)
	return res, err
}

// AnalyzeFrame clusters a random sample of a packed RGB24 frame and returns
// its palette.
func (a *Analyzer) AnalyzeFrame(ctx context.Context, frame []byte, rng kmeans.Rand) (FrameAnalysis, error) {
	totalPixels := len(frame) / 3
	if totalPixels == 0 {
		return FrameAnalysis{}, ErrEmptyFrame
	}
	sampleSize := min(a.SampleSize, totalPixels)

	sample := samplePixels(frame, sampleSize, rng)
	centroids := SeedCentroids(sample, a.Clusters, rng)

	res, err := a.cluster(ctx, centroids, sample, rng)
	if err != nil {
		return FrameAnalysis{}, fmt.Errorf("clustering frame: %w", err)
	}

	counts := make([]int, len(centroids))
	for _, px := range sample {
		idx, _ := kmeans.Nearest(px, centroids)
		counts[idx]++
	}

	total := float64(len(sample))
	colors := make([][3]int, len(centroids))
	proportions := make([]float64, len(centroids))
	hues := make([]float64, len(centroids))
	saturations := make([]float64, len(centroids))
	angles := make([]float64, len(centroids))

	for i, c := range centroids {
		colors[i] = [3]int{int(c[0]), int(c[1]), int(c[2])}
		proportions[i] = float64(counts[i]) / total

		col := colorful.Color{
			R: float64(c[0]) / 255.0,
			G: float64(c[1]) / 255.0,
			B: float64(c[2]) / 255.0,
		}
		h, s, _ := col.Hsl()
		hues[i] = float64(transformH(h))
		saturations[i] = float64(transformS(s))
		angles[i] = h * math.Pi / 180
	}

	analysis := sortByProportions(FrameAnalysis{
		Colors:      colors,
		Proportions: proportions,
		Hues:        hues,
		Saturations: saturations,
		MeanHue:     float64(transformH(meanHueDegrees(angles, proportions))),
		Epochs:      res.Epochs,
		Converged:   res.Converged,
	})
	return analysis, nil
}

// meanHueDegrees returns the weighted circular mean of angles (radians) in [0, 360).
func meanHueDegrees(angles, weights []float64) float64 {
	deg := stat.CircularMean(angles, weights) * 180 / math.Pi
	if math.IsNaN(deg) {
		return 0
	}
	if deg < 0 {
		deg += 360
	}
	return deg
}

// sortByProportions reorders all palette columns by proportion, descending.
// Equal proportions keep cluster order.
func sortByProportions(fa FrameAnalysis) FrameAnalysis {
	indices := make([]int, len(fa.Proportions))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return fa.Proportions[indices[i]] > fa.Proportions[indices[j]]
	})

	out := fa
	out.Colors = make([][3]int, len(indices))
	out.Proportions = make([]float64, len(indices))
	out.Hues = make([]float64, len(indices))
	out.Saturations = make([]float64, len(indices))
	for newIdx, oldIdx := range indices {
		out.Colors[newIdx] = fa.Colors[oldIdx]
		out.Proportions[newIdx] = fa.Proportions[oldIdx]
		out.Hues[newIdx] = fa.Hues[oldIdx]
		out.Saturations[newIdx] = fa.Saturations[oldIdx]
	}
	return out
}

// transformH maps an HSL hue in degrees to the OpenCV range 0-179.
func transformH(hue float64) int {
	if hue >= 360.0 {
		hue = 0.0
	}
	return int(hue / 2.0)
}

// transformS maps an HSL saturation in [0, 1] to the OpenCV range 0-255.
func transformS(saturation float64) int {
	saturation = max(0, min(1, saturation))
	return int(saturation * 255.0)
}
