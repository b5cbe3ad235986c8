package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/metrico/tracebehavior/reader/behavior"
	"github.com/metrico/tracebehavior/reader/metric"
	"github.com/metrico/tracebehavior/reader/model"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"golang.org/x/sync/errgroup"
)

type BehaviorService struct {
	model.ServiceData
}

var _ model.IBehaviorService = &BehaviorService{}

func NewBehaviorService(data model.ServiceData) model.IBehaviorService {
	return &BehaviorService{
		ServiceData: data,
	}
}

// fetch pulls the trace from the span source. Client errors and not-found
// pass through, everything else becomes a single source failure.
func (b *BehaviorService) fetch(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	start := time.Now()
	trace, err := b.Source.FetchTrace(ctx, traceID, limit)
	metric.SourceFetchTime.WithLabelValues(b.Source.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		switch custom_errors.Code(err) {
		case http.StatusNotFound, http.StatusBadRequest:
			return model.Trace{}, err
		}
		if errors.Is(err, context.Canceled) {
			return model.Trace{}, err
		}
		logger.WithFields(logger.LogInfo{"source": b.Source.Name(), "trace_id": traceID}).
			Error("span source failed: ", err)
		return model.Trace{}, custom_errors.NewSourceUnavailableError(b.Source.Name(), err)
	}
	if trace.TraceID == "" {
		trace.TraceID = traceID
	}
	metric.SpansProcessed.Add(float64(len(trace.Spans)))
	return trace, nil
}

func (b *BehaviorService) Timeline(ctx context.Context, traceID string, limit int) (*model.TimelineResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return timeline(trace), nil
}

func (b *BehaviorService) ProcessTree(ctx context.Context, traceID string, limit int,
	nested bool) (*model.ProcessTreeResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return processTree(trace, nested), nil
}

func (b *BehaviorService) SecurityAlerts(ctx context.Context, traceID string, limit int) (*model.AlertsResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return securityAlerts(trace), nil
}

func (b *BehaviorService) Metrics(ctx context.Context, traceID string, limit int) (*model.MetricsResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return metrics(trace), nil
}

// Report fetches the trace once and computes all four views of it.
func (b *BehaviorService) Report(ctx context.Context, traceID string, limit int) (*model.BehaviorReport, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return report(ctx, trace)
}

func (b *BehaviorService) Analyze(ctx context.Context, trace model.Trace) (*model.BehaviorReport, error) {
	metric.SpansProcessed.Add(float64(len(trace.Spans)))
	return report(ctx, trace)
}

// ProcessEvents lists every event of one pid in time order.
func (b *BehaviorService) ProcessEvents(ctx context.Context, traceID string, pid string,
	limit int) (*model.ProcessEventsResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	events := behavior.EventsByPID(trace.Spans, pid)
	return &model.ProcessEventsResponse{TraceID: trace.TraceID, PID: pid, Events: events, Total: len(events)}, nil
}

func (b *BehaviorService) SecurityPatterns(ctx context.Context, traceID string,
	limit int) (*model.SecurityPatternsResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return &model.SecurityPatternsResponse{
		SecurityPatterns: behavior.AnalyzePatterns(trace.Spans, behavior.DefaultTermsSize),
		TraceID:          trace.TraceID,
	}, nil
}

func (b *BehaviorService) EventHistogram(ctx context.Context, traceID string,
	limit int) (*model.EventHistogramResponse, error) {
	trace, err := b.fetch(ctx, traceID, limit)
	if err != nil {
		return nil, err
	}
	return &model.EventHistogramResponse{
		TraceID:  trace.TraceID,
		Interval: behavior.HistogramInterval,
		Buckets:  behavior.EventHistogram(trace.Spans),
	}, nil
}

// report builds the four views concurrently. A cancelled request stops the
// views that have not started yet.
func report(ctx context.Context, trace model.Trace) (*model.BehaviorReport, error) {
	res := &model.BehaviorReport{TraceID: trace.TraceID}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Timeline = timeline(trace)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.ProcessTree = processTree(trace, false)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Alerts = securityAlerts(trace)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Metrics = metrics(trace)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func timeline(trace model.Trace) *model.TimelineResponse {
	events := behavior.BuildTimeline(trace)
	metric.TimelineEvents.Add(float64(len(events)))
	return &model.TimelineResponse{Timeline: events}
}

func processTree(trace model.Trace, nested bool) *model.ProcessTreeResponse {
	nodes := behavior.BuildProcessTree(trace.Spans)
	if nested {
		return &model.ProcessTreeResponse{Processes: behavior.LinkProcessTree(nodes)}
	}
	return &model.ProcessTreeResponse{Processes: behavior.FlatProcessList(nodes)}
}

func securityAlerts(trace model.Trace) *model.AlertsResponse {
	alerts := behavior.ExtractAlerts(trace.Spans)
	return &model.AlertsResponse{Alerts: alerts, Total: len(alerts), TraceID: trace.TraceID}
}

func metrics(trace model.Trace) *model.MetricsResponse {
	return &model.MetricsResponse{Metrics: behavior.AggregateMetrics(trace.Spans), TraceID: trace.TraceID}
}
