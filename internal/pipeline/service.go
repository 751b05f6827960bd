package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gmlima14/irf/internal/features"
	"github.com/gmlima14/irf/internal/orders"
	"github.com/gmlima14/irf/internal/prediction"
	"github.com/gmlima14/irf/internal/report"
	"github.com/gmlima14/irf/internal/risk"
	"github.com/gmlima14/irf/internal/sources"
	"github.com/gmlima14/irf/pkg/errors"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/metrics"
)

const (
	stageLoadReference = "load_reference"
	stageClassifier    = "classifier"
	stagePredict       = "predict"
	stageRender        = "render"
)

// ServiceParams configure the scoring service.
type ServiceParams struct {
	Logger   *logger.Logger
	Provider *sources.Provider
	Metrics  *metrics.ReportMetrics
	// Clock is "now" for order ages and report names. Defaults to time.Now.
	Clock    func() time.Time
	Location *time.Location
	// Trigger labels metrics, e.g. "api" or "cli".
	Trigger string
}

// Service runs one scoring pass per call. It holds no per-run state.
type Service struct {
	logg     *logger.Logger
	provider *sources.Provider
	metrics  *metrics.ReportMetrics
	clock    func() time.Time
	loc      *time.Location
	trigger  string
}

// Result is one run's output.
type Result struct {
	RunID        string
	GeneratedAt  time.Time
	Vendors      []risk.VendorScore
	Orders       []orders.Order
	ExtraHeaders []string

	DateParseFailures int
	MissingReference  int
	DuplicateVendors  []string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Provider == nil || params.Provider.LoadReference == nil || params.Provider.Classifier == nil {
		return nil, fmt.Errorf("provider with load reference and classifier sources required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		logg:     params.Logger,
		provider: params.Provider,
		metrics:  params.Metrics,
		clock:    clock,
		loc:      loc,
		trigger:  params.Trigger,
	}, nil
}

// Score derives features, predicts every order and ranks vendors by risk.
// Row-level problems are logged; source and classifier failures abort.
func (s *Service) Score(ctx context.Context, batch orders.Batch) (*Result, error) {
	runID := uuid.NewString()
	ctx = s.logg.WithRunID(ctx, runID)
	ctx = s.logg.WithField(ctx, "event", "irf.score")
	started := time.Now()
	now := s.clock()

	s.logg.Info(ctx, fmt.Sprintf("scoring %d orders (%s)", len(batch.Orders), s.provider.Describe))

	ref, err := s.provider.LoadReference.LoadReference(ctx)
	if err != nil {
		return nil, s.fail(ctx, stageLoadReference, err, "load reference unavailable")
	}
	if len(ref.Duplicates) > 0 {
		s.logg.Warn(ctx, fmt.Sprintf("load reference lists %d vendors more than once, first row kept: %s",
			len(ref.Duplicates), preview(ref.Duplicates)))
	}

	classifier, err := s.provider.Classifier.Classifier(ctx)
	if err != nil {
		return nil, s.fail(ctx, stageClassifier, err, "classifier unavailable")
	}

	derived := features.NewDeriver(func() time.Time { return now.In(s.loc) }).Derive(batch)
	predicted, err := prediction.NewAdapter(classifier).Predict(ctx, derived)
	if err != nil {
		return nil, s.fail(ctx, stagePredict, err, "prediction failed")
	}

	ranked := risk.Rank(risk.Aggregate(predicted.Orders, ref))
	result := &Result{
		RunID:             runID,
		GeneratedAt:       now,
		Vendors:           ranked,
		Orders:            predicted.Orders,
		ExtraHeaders:      predicted.ExtraHeaders,
		DateParseFailures: predicted.DateParseFailures,
		MissingReference:  risk.MissingReference(ranked),
		DuplicateVendors:  ref.Duplicates,
	}

	if result.DateParseFailures > 0 {
		s.logg.Warn(ctx, fmt.Sprintf("%d order dates could not be parsed and were left blank", result.DateParseFailures))
	}
	if result.MissingReference > 0 {
		s.logg.Warn(ctx, fmt.Sprintf("%d vendors have no load reference; load rate set to 1", result.MissingReference))
	}

	duration := time.Since(started)
	s.metrics.ObserveDuration(s.trigger, duration)
	s.metrics.IncSuccess(s.trigger)
	s.metrics.ObserveBatch(len(result.Orders), len(result.Vendors), result.DateParseFailures, result.MissingReference)

	ctx = s.logg.WithField(ctx, "duration_ms", duration.Milliseconds())
	s.logg.Info(ctx, fmt.Sprintf("ranked %d vendors", len(ranked)))
	return result, nil
}

// Render writes the report workbook for result.
func (s *Service) Render(ctx context.Context, w io.Writer, result *Result) error {
	if result == nil {
		return errors.New(errors.CodeInternal, "no result to render")
	}
	if err := report.Write(w, result.Vendors, result.Orders, result.ExtraHeaders); err != nil {
		ctx = s.logg.WithRunID(ctx, result.RunID)
		return s.fail(ctx, stageRender, err, "report could not be written")
	}
	return nil
}

// FileName names the workbook for result in the service's timezone.
func (s *Service) FileName(result *Result) string {
	at := s.clock()
	if result != nil {
		at = result.GeneratedAt
	}
	return report.FileName(at, s.loc)
}

func (s *Service) fail(ctx context.Context, stage string, err error, msg string) error {
	s.metrics.IncFailure(s.trigger, stage)
	ctx = s.logg.WithField(ctx, "stage", stage)
	s.logg.Error(ctx, msg, err)
	if errors.As(err) != nil {
		return err
	}
	code := errors.CodeDependency
	if stage == stageRender {
		code = errors.CodeInternal
	}
	return errors.Wrap(code, err, msg)
}

func preview(values []string) string {
	const max = 10
	if len(values) <= max {
		return strings.Join(values, ", ")
	}
	return strings.Join(values[:max], ", ") + fmt.Sprintf(" and %d more", len(values)-max)
}
