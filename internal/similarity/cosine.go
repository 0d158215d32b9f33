package similarity

import (
	"math"

	"voiceprint/internal/logging"
)

// Cosine returns the cosine similarity of two vectors: their dot product
// over the product of their magnitudes. Mismatched lengths or a zero
// magnitude return 0 with a logged warning; Cosine never fails.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		logging.Warn("cosine similarity on mismatched vector lengths", "len_a", len(a), "len_b", len(b))
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		logging.Warn("cosine similarity on zero-magnitude vector")
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
