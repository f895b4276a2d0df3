package ingest

import "math"

// NormalizeVector returns v scaled to unit length, so dot products between
// stored vectors and normalized query probes equal cosine similarity.
// The input is left untouched. A zero or empty vector has no direction and
// comes back as an equal-length zero vector.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
