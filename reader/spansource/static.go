package spansource

import (
	"context"

	"github.com/metrico/tracebehavior/reader/model"
)

// StaticSource serves a single, already decoded trace. It answers any trace
// id, which suits one-shot analysis of a document from disk or stdin.
type StaticSource struct {
	Trace model.Trace
}

var _ model.ISpanSource = &StaticSource{}

func (s *StaticSource) Name() string {
	return "static"
}

func (s *StaticSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	trace := s.Trace
	if trace.TraceID == "" {
		trace.TraceID = traceID
	}
	return truncate(trace, limit), nil
}

func (s *StaticSource) Ping(ctx context.Context) error {
	return nil
}
