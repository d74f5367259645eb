// Package worker fans frame analysis out over a bounded set of goroutines.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"plexquant/internal/imageproc"
	"plexquant/internal/video"
)

// Pool analyzes chunks of frames concurrently. Every frame is clustered on a
// single goroutine with its own random source derived from Seed and the
// frame's position, so results do not depend on scheduling.
type Pool struct {
	Workers  int
	Seed     uint64
	Analyzer *imageproc.Analyzer
}

// Analyze returns one analysis per frame, in input order. The first error
// cancels the remaining work.
func (p *Pool) Analyze(ctx context.Context, chunks [][]video.Frame) ([]imageproc.FrameAnalysis, error) {
	offsets := make([]int, len(chunks))
	total := 0
	for i, chunk := range chunks {
		offsets[i] = total
		total += len(chunk)
	}
	results := make([]imageproc.FrameAnalysis, total)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.Workers))
	for i, chunk := range chunks {
		g.Go(func() error {
			for j, f := range chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				idx := offsets[i] + j
				analysis, err := p.Analyzer.AnalyzeFrame(ctx, f, imageproc.FrameRand(p.Seed, idx))
				if err != nil {
					return err
				}
				results[idx] = analysis
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
