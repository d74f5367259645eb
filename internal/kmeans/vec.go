package kmeans

import "plexquant/internal/simd"

// Vec is a 3-channel integer color. Index 3 is padding so a record can be
// loaded as one 4-lane word; it is never read as a channel.
type Vec [4]int64

// Distance returns the L1 (Manhattan) distance between the first three
// channels of a and b.
func Distance(a, b Vec) int64 {
	return simd.L1Int64x3((*[4]int64)(&a), (*[4]int64)(&b))
}

// Nearest returns the index of the centroid closest to v and its distance.
// Ties go to the lowest index. centroids must not be empty.
func Nearest(v Vec, centroids []Vec) (int, int64) {
	best := 0
	minDist := Distance(v, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := Distance(v, centroids[i]); d < minDist {
			minDist = d
			best = i
		}
	}
	return best, minDist
}
