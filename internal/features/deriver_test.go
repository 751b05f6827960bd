package features

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmlima14/irf/internal/orders"
)

func at(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDerive_Dates(t *testing.T) {
	d := NewDeriver(fixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	batch := orders.Batch{Orders: []orders.Order{
		{VendorCode: "100", IssuedAt: at(2024, 1, 15, 0), DueAt: at(2024, 2, 1, 0)},
		{VendorCode: "100", IssuedAt: at(2024, 2, 10, 0)},
		{VendorCode: "200"},
	}}
	out := d.Derive(batch)
	require.Len(t, out.Orders, 3)

	first := out.Orders[0]
	require.NotNil(t, first.OrderMonth)
	assert.Equal(t, 1, *first.OrderMonth)
	assert.Equal(t, 46, *first.OrderAgeDays)
	assert.Equal(t, 17, *first.LeadTimeDays)
	assert.Equal(t, 2, first.VendorLoad)

	second := out.Orders[1]
	assert.Equal(t, 20, *second.OrderAgeDays)
	assert.Nil(t, second.LeadTimeDays)

	third := out.Orders[2]
	assert.Nil(t, third.OrderMonth)
	assert.Nil(t, third.OrderAgeDays)
	assert.Nil(t, third.LeadTimeDays)
	assert.Equal(t, 1, third.VendorLoad)

	assert.ElementsMatch(t, Names, out.Derived)
	assert.Nil(t, batch.Orders[0].OrderMonth, "input batch must not be mutated")
}

func TestDerive_NegativePartialDayFloors(t *testing.T) {
	d := NewDeriver(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	out := d.Derive(orders.Batch{Orders: []orders.Order{
		{IssuedAt: at(2024, 1, 1, 6), DueAt: at(2023, 12, 31, 18)},
	}})
	o := out.Orders[0]
	assert.Equal(t, -1, *o.OrderAgeDays)
	assert.Equal(t, -1, *o.LeadTimeDays)
}

func TestDerive_UsesWallClockOfNow(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	d := NewDeriver(fixedClock(time.Date(2024, 1, 1, 23, 0, 0, 0, loc)))
	out := d.Derive(orders.Batch{Orders: []orders.Order{{IssuedAt: at(2024, 1, 1, 0)}}})
	assert.Equal(t, 0, *out.Orders[0].OrderAgeDays)
}

func TestVendorLoad_PermutationInvariant(t *testing.T) {
	list := []orders.Order{
		{VendorCode: "100"}, {VendorCode: "200"}, {VendorCode: "100"},
		{VendorCode: ""}, {VendorCode: "300"}, {VendorCode: ""}, {VendorCode: "100"},
	}
	want := VendorLoad(list)
	assert.Equal(t, map[string]int{"100": 3, "200": 1, "300": 1, "": 2}, want)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]orders.Order(nil), list...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := VendorLoad(shuffled); !assert.ObjectsAreEqual(want, got) {
			t.Fatalf("vendor load changed under permutation: %v vs %v", got, want)
		}
	}
}

func TestDerive_LoadSumsToBatchSize(t *testing.T) {
	list := []orders.Order{{VendorCode: "A"}, {VendorCode: "B"}, {VendorCode: "A"}}
	total := 0
	for _, n := range VendorLoad(list) {
		total += n
	}
	assert.Equal(t, len(list), total)
}
