package dispatch

import "classd/internal/model"

// Combine merges per-model encoded scores into the aggregated decision.
//
// The combination rule is the arithmetic mean of the encoded confidences.
// It is deterministic and order-independent: the scores map carries no
// ordering, and summation is commutative up to float rounding on
// identical value sets.
func Combine(scores map[string]float64) (ensemble float64, label string, confidence float64) {
	if len(scores) == 0 {
		return 0, "", 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	ensemble = sum / float64(len(scores))
	label, confidence = model.DecodeConfidence(ensemble)
	return ensemble, label, confidence
}
