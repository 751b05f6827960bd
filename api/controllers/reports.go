package controllers

import (
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/gmlima14/irf/api/responses"
	"github.com/gmlima14/irf/api/validators"
	"github.com/gmlima14/irf/internal/orders"
	"github.com/gmlima14/irf/internal/pipeline"
	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/types"
)

const uploadField = "orders"

// ReportService is the scoring surface the report endpoints need.
type ReportService interface {
	Score(ctx context.Context, batch orders.Batch) (*pipeline.Result, error)
	Render(ctx context.Context, w io.Writer, result *pipeline.Result) error
	FileName(result *pipeline.Result) string
}

// ReportDownload scores an uploaded orders file and returns the workbook.
func ReportDownload(svc ReportService, cfg config.ReportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := scoreUpload(w, r, svc, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := svc.Render(r.Context(), &buf, result); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, responses.ContentTypeXLSX, svc.FileName(result), buf.Bytes())
	}
}

// ReportRanking scores an uploaded orders file and returns the vendor ranking as JSON.
func ReportRanking(svc ReportService, cfg config.ReportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := scoreUpload(w, r, svc, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rankingResponse(result))
	}
}

func scoreUpload(w http.ResponseWriter, r *http.Request, svc ReportService, cfg config.ReportConfig) (*pipeline.Result, error) {
	dayFirst, err := validators.ParseQueryBool(r, "day_first", cfg.DayFirst)
	if err != nil {
		return nil, err
	}
	upload, err := validators.ReadUpload(w, r, uploadField, cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}
	batch, err := orders.ReadTable(upload.Name, upload.Data, orders.ParseOptions{DayFirst: dayFirst})
	if err != nil {
		return nil, err
	}
	return svc.Score(r.Context(), batch)
}

func rankingResponse(result *pipeline.Result) types.RankingResponse {
	resp := types.RankingResponse{
		RunID:             result.RunID,
		GeneratedAt:       result.GeneratedAt.Format(time.RFC3339),
		Orders:            len(result.Orders),
		DateParseFailures: result.DateParseFailures,
		MissingReference:  result.MissingReference,
		Vendors:           make([]types.VendorRanking, 0, len(result.Vendors)),
	}
	for _, v := range result.Vendors {
		resp.Vendors = append(resp.Vendors, types.VendorRanking{
			Rank:          v.Rank,
			VendorCode:    v.VendorCode,
			VendorName:    v.VendorName,
			OnTime:        v.OnTimeCount,
			Late:          v.LateCount,
			Total:         v.TotalCount,
			Confidence:    v.ConfidenceMean,
			ValueTotal:    v.ValueTotal.StringFixed(2),
			ValueLate:     v.ValueLate.StringFixed(2),
			LoadReference: v.LoadReference,
			LoadDisplay:   v.LoadDisplay,
			RateOnTime:    finite(v.RateOnTime),
			RateValue:     finite(v.RateValue),
			RateLoad:      finite(v.RateLoad),
			RawIndex:      finite(v.RawIndex),
			RiskIndex:     finite(v.RiskIndex),
		})
	}
	return resp
}

// finite maps NaN and infinities to nil so they encode as null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
