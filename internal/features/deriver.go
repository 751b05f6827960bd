// Package features computes the per-order inputs the delivery classifier
// was trained on: order month, order age, lead time and vendor load.
package features

import (
	"time"

	"github.com/gmlima14/irf/internal/orders"
)

const day = 24 * time.Hour

// Names lists the features Derive adds to a batch.
var Names = []string{
	orders.FeatureOrderMonth,
	orders.FeatureOrderAge,
	orders.FeatureLeadTime,
	orders.FeatureVendorLoad,
}

type Deriver struct {
	now func() time.Time
}

func NewDeriver(now func() time.Time) *Deriver {
	if now == nil {
		now = time.Now
	}
	return &Deriver{now: now}
}

// Derive returns a copy of batch with derived fields filled on every order.
// The clock is read once per call.
func (d *Deriver) Derive(batch orders.Batch) orders.Batch {
	now := orders.WallClock(d.now())

	load := VendorLoad(batch.Orders)
	out := batch
	out.Orders = make([]orders.Order, len(batch.Orders))
	for i, o := range batch.Orders {
		o.OrderMonth, o.OrderAgeDays, o.LeadTimeDays = nil, nil, nil
		if o.IssuedAt != nil {
			month := int(o.IssuedAt.Month())
			age := floorDays(now.Sub(*o.IssuedAt))
			o.OrderMonth = &month
			o.OrderAgeDays = &age
			if o.DueAt != nil {
				lead := floorDays(o.DueAt.Sub(*o.IssuedAt))
				o.LeadTimeDays = &lead
			}
		}
		o.VendorLoad = load[o.VendorCode]
		out.Orders[i] = o
	}

	out.Derived = mergeNames(batch.Derived, Names)
	return out
}

// VendorLoad counts orders per vendor code. Blank codes share one bucket.
func VendorLoad(list []orders.Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range list {
		counts[o.VendorCode]++
	}
	return counts
}

// floorDays truncates toward negative infinity, so -1h is day -1.
func floorDays(d time.Duration) int {
	days := d / day
	if d%day < 0 {
		days--
	}
	return int(days)
}

func mergeNames(existing, add []string) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n] = true
	}
	for _, n := range add {
		if !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	return out
}
