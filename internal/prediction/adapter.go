package prediction

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gmlima14/irf/internal/orders"
	"github.com/gmlima14/irf/pkg/errors"
)

type Adapter struct {
	classifier Classifier
}

func NewAdapter(classifier Classifier) *Adapter {
	return &Adapter{classifier: classifier}
}

// Predict runs the classifier once over the whole batch and attaches a label
// and confidence to every order. Any bad result fails the batch.
func (a *Adapter) Predict(ctx context.Context, batch orders.Batch) (orders.Batch, error) {
	if a == nil || a.classifier == nil {
		return orders.Batch{}, errors.New(errors.CodeInternal, "classifier not configured")
	}

	required := a.classifier.RequiredFeatures()
	available := batch.Features()
	var missing []string
	for _, f := range required {
		if !available[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return orders.Batch{}, errors.New(errors.CodeMissingFeature, fmt.Sprintf("missing features: %v", missing)).
			WithDetails(map[string]any{"missing_features": missing})
	}

	out := batch
	out.Orders = append([]orders.Order(nil), batch.Orders...)
	if len(out.Orders) == 0 {
		return out, nil
	}

	rows := make([]FeatureRow, len(out.Orders))
	for i, o := range out.Orders {
		row := make(FeatureRow, len(required))
		for _, f := range required {
			row[f], _ = batch.FeatureValue(o, f)
		}
		rows[i] = row
	}

	results, err := a.classifier.Predict(ctx, rows)
	if err != nil {
		return orders.Batch{}, errors.Wrap(errors.CodeClassifier, err, "classifier prediction failed")
	}
	if len(results) != len(rows) {
		return orders.Batch{}, errors.New(errors.CodeClassifier, "classifier returned wrong number of results").
			WithDetails(map[string]any{"expected": len(rows), "got": len(results)})
	}

	for i, res := range results {
		label, conf, err := normalize(res)
		if err != nil {
			return orders.Batch{}, errors.Wrap(errors.CodeClassifier, err, "classifier returned an invalid result").
				WithDetails(map[string]any{"row": i})
		}
		out.Orders[i].Prediction = &orders.Prediction{Label: label, Confidence: conf}
	}
	return out, nil
}

// normalize picks the confidence of the predicted class: the matching entry
// of the distribution when one is given, the scalar score otherwise.
func normalize(res Output) (orders.Label, float64, error) {
	label, ok := orders.LabelFromClass(res.Label)
	if !ok {
		return "", 0, fmt.Errorf("label %d is not 0 or 1", res.Label)
	}

	var conf float64
	switch {
	case len(res.Probabilities) > 0:
		if res.Label >= len(res.Probabilities) {
			return "", 0, fmt.Errorf("distribution has %d classes, label is %d", len(res.Probabilities), res.Label)
		}
		conf = res.Probabilities[res.Label]
	case res.Score != nil:
		conf = *res.Score
	default:
		return "", 0, fmt.Errorf("result has neither a score nor a distribution")
	}

	if math.IsNaN(conf) || conf < 0 || conf > 1 {
		return "", 0, fmt.Errorf("confidence %v is outside [0, 1]", conf)
	}
	return label, conf, nil
}
