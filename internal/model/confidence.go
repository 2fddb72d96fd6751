package model

import "strings"

// Classification labels. Models trained with fastText-style label
// prefixes ("__label__research") are accepted too.
const (
	LabelResearch = "research"
	LabelOther    = "other"

	labelPrefix = "__label__"
)

// EncodeConfidence folds a binary label and its confidence in [0.5, 1.0]
// into a single float in [0.0, 1.0]: 1.0 is perfect confidence in the
// research label, 0.0 perfect confidence in other, 0.5 is undecided.
func EncodeConfidence(label string, confidence float64) float64 {
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}
	if strings.TrimPrefix(label, labelPrefix) == LabelResearch {
		return confidence/2 + 0.5
	}
	return 0.5 - confidence/2
}

// DecodeConfidence inverts EncodeConfidence.
func DecodeConfidence(e float64) (label string, confidence float64) {
	if e < 0.5 {
		return LabelOther, 1.0 - 2*e
	}
	return LabelResearch, 2*e - 1.0
}
