// Package loadref holds the historical average number of open orders per
// vendor, used to penalize vendors running above their usual load.
package loadref

import (
	"math"
	"strconv"
	"strings"

	"github.com/gmlima14/irf/pkg/errors"
	"github.com/gmlima14/irf/pkg/tabular"
)

const (
	ColVendor = "Vendor"
	ColLoad   = "carga_media"
	// ColLoadLegacy is the column name used by older exports; it is read as ColLoad.
	ColLoadLegacy = "carga_fornecedor"
)

// Lookup resolves a vendor's reference load. ok is false when the vendor is
// unknown or its value is blank.
type Lookup interface {
	Load(vendor string) (value float64, ok bool)
}

// Entry is one reference row. Value is nil for blank cells.
type Entry struct {
	Vendor string
	Value  *float64
}

// Table maps vendor code to reference load. The first row for a vendor wins.
type Table struct {
	byVendor map[string]*float64
	// Duplicates lists vendor codes seen more than once, in first-seen order.
	Duplicates []string
}

// NewTable indexes entries by vendor. Non-finite values count as missing.
func NewTable(entries []Entry) Table {
	t := Table{byVendor: make(map[string]*float64, len(entries))}
	dup := make(map[string]bool)
	for _, e := range entries {
		key := strings.TrimSpace(e.Vendor)
		if _, seen := t.byVendor[key]; seen {
			if !dup[key] {
				dup[key] = true
				t.Duplicates = append(t.Duplicates, key)
			}
			continue
		}
		value := e.Value
		if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
			value = nil
		}
		t.byVendor[key] = value
	}
	return t
}

func (t Table) Load(vendor string) (float64, bool) {
	v, ok := t.byVendor[strings.TrimSpace(vendor)]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

func (t Table) Len() int {
	return len(t.byVendor)
}

// Read parses a CSV or XLSX reference file.
func Read(name string, data []byte) (Table, error) {
	table, err := tabular.Read(name, data)
	if err != nil {
		return Table{}, errors.Wrap(errors.CodeDependency, err, "load reference file could not be read")
	}
	return ParseTable(table)
}

func ParseTable(table *tabular.Table) (Table, error) {
	if table == nil {
		return Table{}, errors.New(errors.CodeDependency, "load reference table is empty")
	}
	loadCol := ColLoad
	if _, ok := table.Index(ColLoad); !ok {
		loadCol = ColLoadLegacy
	}
	if missing := table.Missing(ColVendor, loadCol); len(missing) > 0 {
		return Table{}, errors.New(errors.CodeDependency, "load reference table is missing columns").
			WithDetails(map[string]any{"missing_columns": missing})
	}

	entries := make([]Entry, 0, len(table.Rows))
	for _, row := range table.Rows {
		entries = append(entries, Entry{
			Vendor: table.Cell(row, ColVendor),
			Value:  parseLoad(table.Cell(row, loadCol)),
		})
	}
	return NewTable(entries), nil
}

func parseLoad(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
