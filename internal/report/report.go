// Package report writes the supplier risk workbook: one sheet with the
// ranked vendors and one with every open order and its prediction.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/gmlima14/irf/internal/orders"
	"github.com/gmlima14/irf/internal/risk"
)

const (
	SheetVendors = "Fornecedores"
	SheetOrders  = "Pedidos em Aberto"

	nanText        = "NaN"
	fileNameLayout = "02-01-2006 15-04"
	// numFmtDate is the built-in m/d/yy number format.
	numFmtDate = 14
)

var VendorHeaders = []string{
	"Ranking",
	"Fornecedor",
	"Vendor",
	"PO previstas no prazo",
	"PO previstas atrasadas",
	"Taxa de PO previstas no prazo",
	"Total de PO",
	"Carga Média de PO",
	"Taxa de Carga",
	"Valor NET de PO",
	"Taxa de Valor previsto no prazo",
	"Confiabilidade Média",
	"Índice de Risco",
}

var OrderHeaders = []string{
	"PO",
	"Item",
	"Vendor",
	"Fornecedor",
	"Material Number",
	"Descrição do Item",
	"Data de Emissão da PO",
	"Stat. Del. Date",
	"Valor Net",
	"Mês do Pedido",
	"Idade do Pedido",
	"Dias para Entrega",
	"Carga do Fornecedor",
	"Previsão",
	"Confiabilidade",
}

// FileName names a report generated at now, e.g. "IRF - 31-01-2024 14-05.xlsx".
func FileName(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("IRF - %s.xlsx", now.In(loc).Format(fileNameLayout))
}

// Write renders the workbook to w. ranked is written in the given order.
func Write(w io.Writer, ranked []risk.VendorScore, list []orders.Order, extraHeaders []string) (err error) {
	f := excelize.NewFile()
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetVendors); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetOrders); err != nil {
		return fmt.Errorf("create sheet %q: %w", SheetOrders, err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtDate})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	if err := writeVendors(f, ranked); err != nil {
		return err
	}
	if err := writeOrders(f, list, extraHeaders, dateStyle); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeVendors(f *excelize.File, ranked []risk.VendorScore) error {
	sw, err := f.NewStreamWriter(SheetVendors)
	if err != nil {
		return fmt.Errorf("open sheet %q: %w", SheetVendors, err)
	}
	if err := sw.SetRow("A1", headerRow(VendorHeaders)); err != nil {
		return fmt.Errorf("write vendor header: %w", err)
	}
	for i, s := range ranked {
		row := []any{
			s.Rank,
			s.VendorName,
			code(s.VendorCode),
			s.OnTimeCount,
			s.LateCount,
			number(s.RateOnTime),
			s.TotalCount,
			s.LoadDisplay,
			number(s.RateLoad),
			s.ValueTotal.InexactFloat64(),
			number(s.RateValue),
			number(s.ConfidenceMean),
			number(s.RiskIndex),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write vendor row %d: %w", i+1, err)
		}
	}
	return sw.Flush()
}

func writeOrders(f *excelize.File, list []orders.Order, extraHeaders []string, dateStyle int) error {
	sw, err := f.NewStreamWriter(SheetOrders)
	if err != nil {
		return fmt.Errorf("open sheet %q: %w", SheetOrders, err)
	}
	headers := append(append([]string(nil), OrderHeaders...), extraHeaders...)
	if err := sw.SetRow("A1", headerRow(headers)); err != nil {
		return fmt.Errorf("write order header: %w", err)
	}

	for i, o := range list {
		row := make([]any, 0, len(headers))
		row = append(row,
			code(o.PONumber),
			code(o.ItemNumber),
			code(o.VendorCode),
			o.VendorName,
			o.MaterialGroup,
			o.MaterialText,
			date(o.IssuedAt, dateStyle),
			date(o.DueAt, dateStyle),
			o.NetValue.InexactFloat64(),
			optionalInt(o.OrderMonth),
			optionalInt(o.OrderAgeDays),
			optionalInt(o.LeadTimeDays),
			o.VendorLoad,
		)
		if o.Prediction != nil {
			row = append(row, string(o.Prediction.Label), o.Prediction.Confidence)
		} else {
			row = append(row, nil, nil)
		}
		for j := range extraHeaders {
			var v any
			if j < len(o.Extra) {
				v = o.Extra[j]
			}
			row = append(row, v)
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write order row %d: %w", i+1, err)
		}
	}
	return sw.Flush()
}

func headerRow(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

// number writes NaN as text since the xlsx format has no NaN value.
func number(v float64) any {
	if math.IsNaN(v) {
		return nanText
	}
	return v
}

// code keeps plain integer codes numeric so they sort and filter like the
// source export, and leaves zero-padded or alphanumeric codes as text.
func code(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if v != "0" && strings.HasPrefix(v, "0") {
		return v
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return v
}

func date(t *time.Time, style int) any {
	if t == nil {
		return nil
	}
	return excelize.Cell{StyleID: style, Value: *t}
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
