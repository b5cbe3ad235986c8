// Package spansource holds the backends a trace can be fetched from.
package spansource

import (
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/dbRegistry"
	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"github.com/pkg/errors"
)

// New builds the span source named by s.SpanSource.
func New(s config.BehaviorSettings) (model.ISpanSource, error) {
	logger.Info("using span source ", s.SpanSource)
	switch s.SpanSource {
	case config.SourceClickhouse, "":
		dbRegistry.Init()
		return NewClickhouseSource(dbRegistry.Registry), nil
	case config.SourceFile:
		return NewFileSource(s.TraceDir), nil
	case config.SourceJaeger:
		return NewJaegerSource(s.JaegerURL, s.SourceRetries, s.SourceTimeout), nil
	case config.SourceElasticsearch:
		return NewElasticSource(s)
	}
	return nil, errors.Errorf("unknown span source %q", s.SpanSource)
}
