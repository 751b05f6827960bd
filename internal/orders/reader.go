package orders

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/gmlima14/irf/pkg/errors"
	"github.com/gmlima14/irf/pkg/tabular"
)

// ParseOptions tunes how ambiguous cells are read.
type ParseOptions struct {
	// DayFirst reads 02/01/2006 as 2 January instead of February 1.
	DayFirst bool
}

// ReadTable parses an uploaded orders file, picking CSV or XLSX from name.
func ReadTable(name string, data []byte, opts ParseOptions) (Batch, error) {
	table, err := tabular.Read(name, data)
	if err != nil {
		if stdErrors.Is(err, tabular.ErrUnsupportedFormat) {
			return Batch{}, errors.New(errors.CodeValidation, "orders file must be .csv or .xlsx").
				WithDetails(map[string]any{"file": name})
		}
		return Batch{}, errors.Wrap(errors.CodeValidation, err, "orders file could not be read")
	}
	return ParseTable(table, opts)
}

// ParseTable converts table rows into orders. Missing required columns fail
// the batch; bad dates and values in individual rows do not.
func ParseTable(table *tabular.Table, opts ParseOptions) (Batch, error) {
	if table == nil {
		return Batch{}, errors.New(errors.CodeValidation, "orders table is empty")
	}
	if missing := table.Missing(RequiredColumns...); len(missing) > 0 {
		return Batch{}, errors.New(errors.CodeValidation, fmt.Sprintf("orders file is missing columns: %s", strings.Join(missing, ", "))).
			WithDetails(map[string]any{"missing_columns": missing})
	}

	known := make(map[int]bool, len(RequiredColumns))
	for _, col := range RequiredColumns {
		pos, _ := table.Index(col)
		known[pos] = true
	}
	var extraPos []int
	var extraHeaders []string
	for i, h := range table.Header {
		if known[i] || h == "" {
			continue
		}
		extraPos = append(extraPos, i)
		extraHeaders = append(extraHeaders, h)
	}

	dates := dateParser{dayFirst: opts.DayFirst, serials: table.Format == tabular.FormatXLSX, date1904: table.Date1904}
	batch := Batch{
		Orders:       make([]Order, 0, len(table.Rows)),
		ExtraHeaders: extraHeaders,
	}
	for _, row := range table.Rows {
		o := Order{
			PONumber:      table.Cell(row, ColPONumber),
			ItemNumber:    table.Cell(row, ColItemNumber),
			VendorCode:    table.Cell(row, ColVendor),
			VendorName:    table.Cell(row, ColVendorName),
			MaterialGroup: table.Cell(row, ColMaterialGroup),
			MaterialText:  table.Cell(row, ColMaterialText),
			NetValue:      ParseAmount(table.Cell(row, ColNetValue)),
		}

		var ok bool
		if o.IssuedAt, ok = dates.parse(table.Cell(row, ColIssuedAt)); !ok {
			batch.DateParseFailures++
		}
		if o.DueAt, ok = dates.parse(table.Cell(row, ColDueAt)); !ok {
			batch.DateParseFailures++
		}

		if len(extraPos) > 0 {
			o.Extra = make([]string, len(extraPos))
			for i, pos := range extraPos {
				if pos < len(row) {
					o.Extra[i] = strings.TrimSpace(row[pos])
				}
			}
		}
		batch.Orders = append(batch.Orders, o)
	}
	return batch, nil
}
