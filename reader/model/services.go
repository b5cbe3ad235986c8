package model

import (
	"context"
	"time"
)

type IBehaviorService interface {
	Timeline(ctx context.Context, traceID string, limit int) (*TimelineResponse, error)
	ProcessTree(ctx context.Context, traceID string, limit int, nested bool) (*ProcessTreeResponse, error)
	SecurityAlerts(ctx context.Context, traceID string, limit int) (*AlertsResponse, error)
	Metrics(ctx context.Context, traceID string, limit int) (*MetricsResponse, error)
	Report(ctx context.Context, traceID string, limit int) (*BehaviorReport, error)
	Analyze(ctx context.Context, trace Trace) (*BehaviorReport, error)
	ProcessEvents(ctx context.Context, traceID string, pid string, limit int) (*ProcessEventsResponse, error)
	SecurityPatterns(ctx context.Context, traceID string, limit int) (*SecurityPatternsResponse, error)
	EventHistogram(ctx context.Context, traceID string, limit int) (*EventHistogramResponse, error)
}

// ISpanSource yields the raw spans of one trace. A limit of 0 means all spans.
type ISpanSource interface {
	Name() string
	FetchTrace(ctx context.Context, traceID string, limit int) (Trace, error)
	Ping(ctx context.Context) error
}

// ServiceData carries the collaborators shared by the services.
type ServiceData struct {
	Source       ISpanSource
	lastPingTime time.Time
}

func (s *ServiceData) Ping() error {
	if s.lastPingTime.Add(time.Second * 5).After(time.Now()) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	err := s.Source.Ping(ctx)
	if err == nil {
		s.lastPingTime = time.Now()
	}
	return err
}
