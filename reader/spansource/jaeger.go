package spansource

import (
	"bytes"
	"encoding/json"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/metrico/tracebehavior/reader/model"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/pkg/errors"
)

var jaegerJSON = jsoniter.Config{
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

type jaegerTag struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type jaegerSpan struct {
	TraceID       string      `json:"traceID"`
	SpanID        string      `json:"spanID"`
	OperationName string      `json:"operationName"`
	StartTime     int64       `json:"startTime"`
	Duration      int64       `json:"duration"`
	Tags          []jaegerTag `json:"tags"`
}

type jaegerTrace struct {
	TraceID string       `json:"traceID"`
	Spans   []jaegerSpan `json:"spans"`
}

type jaegerEnvelope struct {
	Data []jaegerTrace `json:"data"`
}

// DecodeJaegerTrace parses either a single Jaeger trace document
// ({"traceID":..,"spans":[..]}) or a Jaeger query API envelope
// ({"data":[..]}), in which case the first trace is used.
func DecodeJaegerTrace(data []byte) (model.Trace, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return model.Trace{}, custom_errors.New400Error("empty trace document")
	}
	probe := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := jaegerJSON.Unmarshal(data, &probe); err != nil {
		return model.Trace{}, custom_errors.New400Error("invalid trace document: " + err.Error())
	}
	if probe.Data != nil {
		var env jaegerEnvelope
		if err := jaegerJSON.Unmarshal(data, &env); err != nil {
			return model.Trace{}, custom_errors.New400Error("invalid trace envelope: " + err.Error())
		}
		if len(env.Data) == 0 {
			return model.Trace{Spans: []model.Span{}}, nil
		}
		return env.Data[0].toModel(), nil
	}
	var doc jaegerTrace
	if err := jaegerJSON.Unmarshal(data, &doc); err != nil {
		return model.Trace{}, custom_errors.New400Error("invalid trace document: " + err.Error())
	}
	return doc.toModel(), nil
}

func (t jaegerTrace) toModel() model.Trace {
	res := model.Trace{TraceID: t.TraceID, Spans: make([]model.Span, 0, len(t.Spans))}
	for _, s := range t.Spans {
		span := model.Span{
			SpanID:        s.SpanID,
			OperationName: s.OperationName,
			StartTime:     s.StartTime,
			Duration:      s.Duration,
			Tags:          make([]model.Tag, 0, len(s.Tags)),
		}
		for _, tag := range s.Tags {
			span.Tags = append(span.Tags, model.Tag{Key: tag.Key, Value: jaegerTagValue(tag)})
		}
		res.Spans = append(res.Spans, span)
		if res.TraceID == "" {
			res.TraceID = s.TraceID
		}
	}
	return res
}

// jaegerTagValue honours the declared Jaeger tag type and falls back to the
// JSON kind when the type is missing.
func jaegerTagValue(tag jaegerTag) model.TagValue {
	switch v := tag.Value.(type) {
	case bool:
		return model.BoolValue(v)
	case json.Number:
		switch tag.Type {
		case "string":
			return model.StringValue(v.String())
		case "float64":
			if f, err := v.Float64(); err == nil {
				return model.FloatValue(f)
			}
		}
		if i, err := v.Int64(); err == nil {
			return model.IntValue(i)
		}
		if f, err := v.Float64(); err == nil {
			return model.FloatValue(f)
		}
		return model.StringValue(v.String())
	case string:
		switch tag.Type {
		case "bool":
			if b, err := strconv.ParseBool(v); err == nil {
				return model.BoolValue(b)
			}
		case "int64":
			if i, err := strconv.ParseInt(v, 10, 64); err == nil {
				return model.IntValue(i)
			}
		case "float64":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return model.FloatValue(f)
			}
		}
		return model.StringValue(v)
	case nil:
		return model.StringValue("")
	default:
		raw, err := jaegerJSON.Marshal(v)
		if err != nil {
			return model.StringValue("")
		}
		return model.StringValue(string(raw))
	}
}

// truncate keeps the first limit spans; 0 keeps everything.
func truncate(trace model.Trace, limit int) model.Trace {
	if limit > 0 && len(trace.Spans) > limit {
		trace.Spans = trace.Spans[:limit]
	}
	return trace
}

// wrapDecode turns a decode failure of a stored document into a plain error,
// so it surfaces as a source failure rather than a client error.
func wrapDecode(err error, traceID string) error {
	return errors.Errorf("decode trace %s: %s", traceID, err.Error())
}
