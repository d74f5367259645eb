package imageproc

import (
	"fmt"
	"image"
	"math/rand/v2"

	"plexquant/internal/kmeans"
)

// PixelsFromRGB24 converts a packed RGB24 frame into clustering records.
func PixelsFromRGB24(frame []byte) ([]kmeans.Vec, error) {
	if len(frame)%3 != 0 {
		return nil, fmt.Errorf("rgb24 frame length %d is not a multiple of 3", len(frame))
	}
	pixels := make([]kmeans.Vec, len(frame)/3)
	for i := range pixels {
		base := i * 3
		pixels[i] = kmeans.Vec{int64(frame[base]), int64(frame[base+1]), int64(frame[base+2])}
	}
	return pixels, nil
}

// PixelsFromImage converts img to 8-bit clustering records in row-major order.
func PixelsFromImage(img image.Image) []kmeans.Vec {
	b := img.Bounds()
	pixels := make([]kmeans.Vec, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pixels = append(pixels, kmeans.Vec{int64(r >> 8), int64(g >> 8), int64(bl >> 8)})
		}
	}
	return pixels
}

// samplePixels draws n pixels from a packed RGB24 frame, with replacement.
func samplePixels(frame []byte, n int, rng kmeans.Rand) []kmeans.Vec {
	total := len(frame) / 3
	sample := make([]kmeans.Vec, n)
	for i := range sample {
		base := rng.IntN(total) * 3
		sample[i] = kmeans.Vec{int64(frame[base]), int64(frame[base+1]), int64(frame[base+2])}
	}
	return sample
}

// SeedCentroids picks k pixels at distinct random positions as the starting
// centroids. k is capped at len(pixels). pixels are not modified.
func SeedCentroids(pixels []kmeans.Vec, k int, rng kmeans.Rand) []kmeans.Vec {
	if k > len(pixels) {
		k = len(pixels)
	}
	centroids := make([]kmeans.Vec, 0, k)
	used := make(map[int]struct{}, k)
	for len(centroids) < k {
		idx := rng.IntN(len(pixels))
		for {
			if _, ok := used[idx]; !ok {
				break
			}
			idx = (idx + 1) % len(pixels)
		}
		used[idx] = struct{}{}
		centroids = append(centroids, pixels[idx])
	}
	return centroids
}

// FrameRand returns the random source for the frame at index of a run seeded
// with seed. Each frame gets an independent stream.
func FrameRand(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)))
}
