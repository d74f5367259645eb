// Package kmeans implements mini-batch k-means over 3-channel integer colors.
//
// It quantizes large pixel sets to a small palette: each epoch clusters a
// strided random subsample instead of the whole set.
package kmeans

import "fmt"

// Result summarizes a finished run.
type Result struct {
	// Epochs is the number of epochs executed.
	Epochs int
	// Movement is the total centroid movement of the last epoch.
	Movement int64
	// Converged is true when the run stopped on the threshold rather than
	// on the epoch limit.
	Converged bool
}

// bucket accumulates one cluster's assignments within an epoch.
type bucket struct {
	count int64
	sum   Vec
}

// Run clusters pixels with mini-batch k-means, refining centroids in place.
//
// Each epoch visits the strided subset k, 2k, 3k, ... of pixels, where k is
// drawn from rng in [1, floor(sqrt(len(pixels)))], assigns every visited
// pixel to its nearest centroid and moves each centroid that received
// pixels to the truncated mean of its batch. Centroids without pixels keep
// their value. The run stops after the first epoch whose total movement is
// below the threshold, or at the epoch limit.
//
// pixels are never written. Neither slice may be modified concurrently.
func Run(centroids, pixels []Vec, rng Rand, opts ...Option) (Result, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(centroids, pixels, rng, o.cfg); err != nil {
		return Result{}, err
	}

	batchMax := isqrt(len(pixels))
	acc := make([]bucket, len(centroids))

	var res Result
	for epoch := 0; epoch < o.cfg.MaxEpochs; epoch++ {
		clear(acc)

		stride := drawStride(rng, batchMax)
		sampled := assign(acc, centroids, pixels, stride)
		movement := update(acc, centroids)

		res.Epochs = epoch + 1
		res.Movement = movement
		if o.observer != nil {
			o.observer(Epoch{Index: epoch, Stride: stride, Sampled: sampled, Movement: movement})
		}
		if movement < o.cfg.Threshold {
			res.Converged = true
			break
		}
	}
	return res, nil
}

func validate(centroids, pixels []Vec, rng Rand, cfg Config) error {
	switch {
	case len(centroids) == 0:
		return &ArgumentError{Arg: "centroid count", Value: 0}
	case len(pixels) == 0:
		return &ArgumentError{Arg: "pixel count", Value: 0}
	case rng == nil:
		return fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	case cfg.MaxEpochs < 1:
		return &ArgumentError{Arg: "max epochs", Value: int64(cfg.MaxEpochs)}
	case cfg.Threshold < 0:
		return &ArgumentError{Arg: "threshold", Value: cfg.Threshold}
	}
	return nil
}

// assign adds every pixel at a positive multiple of stride to the bucket of
// its nearest centroid and returns how many pixels it visited.
func assign(acc []bucket, centroids, pixels []Vec, stride int) int {
	sampled := 0
	for i := stride; i < len(pixels); i += stride {
		px := pixels[i]
		c, _ := Nearest(px, centroids)
		b := &acc[c]
		b.count++
		b.sum[0] += px[0]
		b.sum[1] += px[1]
		b.sum[2] += px[2]
		sampled++
	}
	return sampled
}

// update moves every centroid with assignments to its batch mean and returns
// the summed movement.
func update(acc []bucket, centroids []Vec) int64 {
	var movement int64
	for i := range acc {
		b := &acc[i]
		if b.count == 0 {
			continue
		}
		mean := Vec{b.sum[0] / b.count, b.sum[1] / b.count, b.sum[2] / b.count}
		movement += Distance(centroids[i], mean)
		centroids[i] = mean
	}
	return movement
}
