package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const defaultThreshold = 0.5

// Standardizer rescales a numeric feature before its coefficient applies.
type Standardizer struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std" validate:"gt=0"`
}

// LogisticModel is an exported logistic regression over the order features.
// p(late) = sigmoid(intercept + Σ numeric·coef + Σ categorical level weight).
// Nil or unreadable numerics take their Impute value; unknown levels weigh 0.
type LogisticModel struct {
	Version     string                        `json:"version"`
	Features    []string                      `json:"features" validate:"required,min=1,dive,required"`
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]float64            `json:"numeric"`
	Categorical map[string]map[string]float64 `json:"categorical"`
	Impute      map[string]float64            `json:"impute"`
	Standardize map[string]Standardizer       `json:"standardize" validate:"omitempty,dive"`
	// Threshold on p(late); zero means 0.5.
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
}

// LoadLogisticModel decodes and checks a model artifact.
func LoadLogisticModel(data []byte) (*LogisticModel, error) {
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	declared := make(map[string]bool, len(m.Features))
	for _, f := range m.Features {
		declared[f] = true
	}
	for f := range m.Numeric {
		if !declared[f] {
			return nil, fmt.Errorf("invalid model artifact: numeric coefficient %q is not a declared feature", f)
		}
		if _, dup := m.Categorical[f]; dup {
			return nil, fmt.Errorf("invalid model artifact: feature %q is both numeric and categorical", f)
		}
	}
	for f := range m.Categorical {
		if !declared[f] {
			return nil, fmt.Errorf("invalid model artifact: categorical weights %q is not a declared feature", f)
		}
	}
	return &m, nil
}

func (m *LogisticModel) RequiredFeatures() []string {
	return append([]string(nil), m.Features...)
}

func (m *LogisticModel) Predict(ctx context.Context, rows []FeatureRow) ([]Output, error) {
	threshold := m.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}

	out := make([]Output, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := m.probability(row)
		label := 0
		if p >= threshold {
			label = 1
		}
		out[i] = Output{Label: label, Probabilities: []float64{1 - p, p}}
	}
	return out, nil
}

func (m *LogisticModel) probability(row FeatureRow) float64 {
	z := m.Intercept
	for f, coef := range m.Numeric {
		v, ok := numeric(row[f])
		if !ok {
			v = m.Impute[f]
		}
		if s, ok := m.Standardize[f]; ok && s.Std > 0 {
			v = (v - s.Mean) / s.Std
		}
		z += coef * v
	}
	for f, levels := range m.Categorical {
		z += levels[categorical(row[f])]
	}
	return sigmoid(z)
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func categorical(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
