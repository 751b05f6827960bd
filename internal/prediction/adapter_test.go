package prediction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmlima14/irf/internal/features"
	"github.com/gmlima14/irf/internal/orders"
	pkgerrors "github.com/gmlima14/irf/pkg/errors"
)

type fakeClassifier struct {
	features []string
	outputs  []Output
	err      error
	calls    int
	rows     []FeatureRow
}

func (f *fakeClassifier) RequiredFeatures() []string { return f.features }

func (f *fakeClassifier) Predict(_ context.Context, rows []FeatureRow) ([]Output, error) {
	f.calls++
	f.rows = rows
	return f.outputs, f.err
}

func ptr(v float64) *float64 { return &v }

func derivedBatch(n int) orders.Batch {
	list := make([]orders.Order, n)
	for i := range list {
		list[i] = orders.Order{VendorCode: "100", MaterialGroup: "M01"}
	}
	return features.NewDeriver(nil).Derive(orders.Batch{Orders: list})
}

func TestAdapterPredict_LabelsAndConfidence(t *testing.T) {
	fake := &fakeClassifier{
		features: []string{orders.ColMaterialGroup, orders.FeatureVendorLoad},
		outputs: []Output{
			{Label: 0, Probabilities: []float64{0.8, 0.2}},
			{Label: 1, Probabilities: []float64{0.3, 0.7}},
			{Label: 1, Score: ptr(0.65)},
		},
	}
	out, err := NewAdapter(fake).Predict(context.Background(), derivedBatch(3))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)

	require.Len(t, out.Orders, 3)
	assert.Equal(t, orders.LabelOnTime, out.Orders[0].Prediction.Label)
	assert.InDelta(t, 0.8, out.Orders[0].Prediction.Confidence, 1e-9)
	assert.Equal(t, orders.LabelLate, out.Orders[1].Prediction.Label)
	assert.InDelta(t, 0.7, out.Orders[1].Prediction.Confidence, 1e-9)
	assert.InDelta(t, 0.65, out.Orders[2].Prediction.Confidence, 1e-9)

	assert.Equal(t, "M01", fake.rows[0][orders.ColMaterialGroup])
	assert.Equal(t, 3.0, fake.rows[0][orders.FeatureVendorLoad])
}

func TestAdapterPredict_MissingFeature(t *testing.T) {
	fake := &fakeClassifier{features: []string{orders.FeatureLeadTime, "Plant"}}
	batch := orders.Batch{Orders: []orders.Order{{VendorCode: "100"}}}

	_, err := NewAdapter(fake).Predict(context.Background(), batch)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMissingFeature))
	assert.Equal(t, 0, fake.calls)

	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, []string{orders.FeatureLeadTime, "Plant"}, details["missing_features"])
}

func TestAdapterPredict_InvalidResultsFailBatch(t *testing.T) {
	tests := []struct {
		name    string
		outputs []Output
		err     error
	}{
		{name: "classifier error", err: errors.New("model crashed")},
		{name: "count mismatch", outputs: []Output{{Label: 0, Score: ptr(0.9)}}},
		{name: "unknown label", outputs: []Output{{Label: 2, Score: ptr(0.9)}, {Label: 0, Score: ptr(0.9)}}},
		{name: "no confidence", outputs: []Output{{Label: 0}, {Label: 0, Score: ptr(0.9)}}},
		{name: "confidence out of range", outputs: []Output{{Label: 0, Score: ptr(1.2)}, {Label: 0, Score: ptr(0.9)}}},
		{name: "short distribution", outputs: []Output{{Label: 1, Probabilities: []float64{1}}, {Label: 0, Score: ptr(0.9)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeClassifier{outputs: tt.outputs, err: tt.err}
			_, err := NewAdapter(fake).Predict(context.Background(), derivedBatch(2))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeClassifier), "got %v", err)
		})
	}
}

func TestAdapterPredict_EmptyBatchSkipsClassifier(t *testing.T) {
	fake := &fakeClassifier{}
	out, err := NewAdapter(fake).Predict(context.Background(), orders.Batch{})
	require.NoError(t, err)
	assert.Empty(t, out.Orders)
	assert.Equal(t, 0, fake.calls)
}
