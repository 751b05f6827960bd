package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gmlima14/irf/pkg/errors"
)

const header = "EBELN,EBELP,BEDAT,Due Date (incl. ex works time),Vendor,Vendor Name,MATKL,Material Text (AST or Short Text),NetOrderValue"

func TestReadTable_CSV(t *testing.T) {
	data := header + ",Plant\n" +
		"4500000001,10,2024-01-15,2024-02-01,100,ACME,M01,Bolt,\"1,500.50\",BR01\n" +
		"4500000002,20,not a date,,200,Globex,M02,Nut,abc,BR02\n"

	batch, err := ReadTable("open.csv", []byte(data), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, batch.Orders, 2)

	assert.Equal(t, []string{"Plant"}, batch.ExtraHeaders)
	assert.Equal(t, 1, batch.DateParseFailures)

	first := batch.Orders[0]
	assert.Equal(t, "4500000001", first.PONumber)
	assert.Equal(t, "100", first.VendorCode)
	assert.Equal(t, "ACME", first.VendorName)
	assert.Equal(t, "1500.5", first.NetValue.String())
	assert.Equal(t, []string{"BR01"}, first.Extra)
	require.NotNil(t, first.IssuedAt)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *first.IssuedAt)

	second := batch.Orders[1]
	assert.Nil(t, second.IssuedAt)
	assert.Nil(t, second.DueAt)
	assert.True(t, second.NetValue.IsZero())
}

func TestReadTable_MissingColumns(t *testing.T) {
	_, err := ReadTable("open.csv", []byte("EBELN,Vendor\n1,2\n"), ParseOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	typed := errors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details["missing_columns"], "NetOrderValue")
}

func TestReadTable_UnsupportedExtension(t *testing.T) {
	_, err := ReadTable("open.pdf", []byte("x"), ParseOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestReadTable_XLSXSerialDates(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{
		"EBELN", "EBELP", "BEDAT", "Due Date (incl. ex works time)", "Vendor",
		"Vendor Name", "MATKL", "Material Text (AST or Short Text)", "NetOrderValue",
	}))
	// 45306 is 2024-01-15 in the 1900 date system.
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{
		4500000001, 10, 45306, 45323, 100, "ACME", "M01", "Bolt", 250.75,
	}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	batch, err := ReadTable("open.xlsx", buf.Bytes(), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, batch.Orders, 1)

	o := batch.Orders[0]
	require.NotNil(t, o.IssuedAt)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *o.IssuedAt)
	require.NotNil(t, o.DueAt)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *o.DueAt)
	assert.Equal(t, "250.75", o.NetValue.String())
	assert.Equal(t, 0, batch.DateParseFailures)
	assert.Empty(t, batch.ExtraHeaders)
}

func TestDateParser(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name     string
		raw      string
		dayFirst bool
		want     *time.Time
		ok       bool
	}{
		{name: "blank", raw: "  ", ok: true},
		{name: "iso", raw: "2024-03-05", want: day(2024, 3, 5), ok: true},
		{name: "month first default", raw: "03/05/2024", want: day(2024, 3, 5), ok: true},
		{name: "day first", raw: "03/05/2024", dayFirst: true, want: day(2024, 5, 3), ok: true},
		{name: "month first falls back", raw: "25/05/2024", want: day(2024, 5, 25), ok: true},
		{name: "sap dotted", raw: "05.03.2024", want: day(2024, 3, 5), ok: true},
		{name: "garbage", raw: "tomorrow", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := dateParser{dayFirst: tt.dayFirst}.parse(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil date, got %v", got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1234.56":     "1234.56",
		"1,234.56":    "1234.56",
		"1.234,56":    "1234.56",
		"R$ 1.234,56": "1234.56",
		"12,5":        "12.5",
		"1,234":       "1234",
		"1.234.567":   "1234567",
		"":            "0",
		"n/a":         "0",
		"-42":         "-42",
	}
	for raw, want := range tests {
		if got := ParseAmount(raw).String(); got != want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestBatchFeatures(t *testing.T) {
	month := 3
	b := Batch{
		Orders:       []Order{{VendorCode: "100", OrderMonth: &month, Extra: []string{"BR01"}}},
		ExtraHeaders: []string{"Plant"},
		Derived:      []string{FeatureOrderMonth},
	}
	features := b.Features()
	assert.True(t, features[ColMaterialGroup])
	assert.True(t, features["Plant"])
	assert.True(t, features[FeatureOrderMonth])
	assert.False(t, features[FeatureLeadTime])

	v, ok := b.FeatureValue(b.Orders[0], FeatureOrderMonth)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = b.FeatureValue(b.Orders[0], "Plant")
	require.True(t, ok)
	assert.Equal(t, "BR01", v)

	v, ok = b.FeatureValue(b.Orders[0], FeatureLeadTime)
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = b.FeatureValue(b.Orders[0], "Unknown")
	assert.False(t, ok)
}
