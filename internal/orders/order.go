package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Label is the predicted delivery outcome as written to the report.
type Label string

const (
	LabelOnTime Label = "No Prazo"
	LabelLate   Label = "Atraso"
)

// LabelFromClass maps the classifier's class index to a Label. 1 is late, 0 is on-time.
func LabelFromClass(class int) (Label, bool) {
	switch class {
	case 0:
		return LabelOnTime, true
	case 1:
		return LabelLate, true
	}
	return "", false
}

// Prediction is attached once per order by the prediction adapter.
type Prediction struct {
	Label      Label
	Confidence float64
}

// Order is one open purchase-order line item.
type Order struct {
	PONumber      string
	ItemNumber    string
	VendorCode    string
	VendorName    string
	MaterialGroup string
	MaterialText  string
	IssuedAt      *time.Time
	DueAt         *time.Time
	NetValue      decimal.Decimal
	// Extra holds pass-through cells aligned with Batch.ExtraHeaders.
	Extra []string

	OrderMonth   *int
	OrderAgeDays *int
	LeadTimeDays *int
	VendorLoad   int

	Prediction *Prediction
}

// Batch is one run's worth of orders plus the columns they came with.
type Batch struct {
	Orders       []Order
	ExtraHeaders []string
	// Derived lists feature names added after reading.
	Derived           []string
	DateParseFailures int
}

// Features returns every feature name the batch can supply to a classifier.
func (b Batch) Features() map[string]bool {
	out := make(map[string]bool, len(RequiredColumns)+len(b.ExtraHeaders)+len(b.Derived))
	for _, c := range RequiredColumns {
		out[c] = true
	}
	for _, h := range b.ExtraHeaders {
		out[h] = true
	}
	for _, d := range b.Derived {
		out[d] = true
	}
	return out
}

// FeatureValue returns the value of feature for order o. Numeric features are
// float64 or nil, everything else is a string. ok is false for unknown names.
func (b Batch) FeatureValue(o Order, feature string) (any, bool) {
	switch feature {
	case ColVendor:
		return o.VendorCode, true
	case ColVendorName:
		return o.VendorName, true
	case ColPONumber:
		return o.PONumber, true
	case ColItemNumber:
		return o.ItemNumber, true
	case ColMaterialGroup:
		return o.MaterialGroup, true
	case ColMaterialText:
		return o.MaterialText, true
	case ColNetValue:
		return o.NetValue.InexactFloat64(), true
	case ColIssuedAt:
		return timeValue(o.IssuedAt), true
	case ColDueAt:
		return timeValue(o.DueAt), true
	case FeatureOrderMonth:
		return intValue(o.OrderMonth), true
	case FeatureOrderAge:
		return intValue(o.OrderAgeDays), true
	case FeatureLeadTime:
		return intValue(o.LeadTimeDays), true
	case FeatureVendorLoad:
		return float64(o.VendorLoad), true
	}
	for i, h := range b.ExtraHeaders {
		if h == feature {
			if i < len(o.Extra) {
				return o.Extra[i], true
			}
			return "", true
		}
	}
	return nil, false
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return float64(*v)
}

func timeValue(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(time.RFC3339)
}
