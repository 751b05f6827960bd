// Package prediction turns classifier output into per-order delivery labels.
package prediction

import "context"

// FeatureRow holds one order's feature values keyed by feature name.
// Numeric values are float64 or nil, categorical values are strings.
type FeatureRow map[string]any

// Output is one classifier result. Label is 0 (on-time) or 1 (late).
// Probabilities, when present, is the per-class distribution; otherwise
// Score is the confidence of Label.
type Output struct {
	Label         int
	Score         *float64
	Probabilities []float64
}

// Classifier is a pre-trained binary delivery model.
type Classifier interface {
	RequiredFeatures() []string
	Predict(ctx context.Context, rows []FeatureRow) ([]Output, error)
}
