package spansource

import (
	"strconv"

	"github.com/metrico/tracebehavior/reader/model"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
	common "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"
)

const (
	payloadZipkinJSON = 1
	payloadOTLP       = 2
)

// storedSpan is one row of tempo_traces.
type storedSpan struct {
	spanId      string
	startTimeNs int64
	durationNs  int64
	payloadType int
	payload     string
}

func (p *storedSpan) toSpan(parser *fastjson.Parser) (model.Span, error) {
	span := model.Span{
		SpanID:    p.spanId,
		StartTime: p.startTimeNs / 1000,
		Duration:  p.durationNs / 1000,
	}
	var err error
	switch p.payloadType {
	case payloadZipkinJSON:
		err = parseZipkinJSON(p.payload, parser, &span)
	case payloadOTLP:
		err = parseOTLP(p.payload, parser, &span)
	default:
		err = errors.Errorf("unknown payload type %d", p.payloadType)
	}
	if err != nil {
		return model.Span{}, errors.Wrapf(err, "span %s", p.spanId)
	}
	return span, nil
}

func parseZipkinJSON(payload string, parser *fastjson.Parser, span *model.Span) error {
	root, err := parser.Parse(payload)
	if err != nil {
		return err
	}
	span.OperationName = string(root.GetStringBytes("name"))
	attrs := root.GetObject("tags")
	if attrs == nil {
		return nil
	}
	attrs.Visit(func(key []byte, v *fastjson.Value) {
		span.Tags = append(span.Tags, model.Tag{Key: string(key), Value: fastjsonValue(v)})
	})
	return nil
}

func fastjsonValue(v *fastjson.Value) model.TagValue {
	switch v.Type() {
	case fastjson.TypeString:
		return model.StringValue(string(v.GetStringBytes()))
	case fastjson.TypeTrue:
		return model.BoolValue(true)
	case fastjson.TypeFalse:
		return model.BoolValue(false)
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return model.IntValue(i)
		}
		return model.FloatValue(v.GetFloat64())
	case fastjson.TypeNull:
		return model.StringValue("")
	default:
		return model.StringValue(v.String())
	}
}

func parseOTLP(payload string, parser *fastjson.Parser, span *model.Span) error {
	if len(payload) == 0 {
		return errors.New("empty OTLP payload")
	}
	var (
		otlpSpan *v1.Span
		err      error
	)
	if payload[0] == '{' {
		otlpSpan, err = parseOTLPJson(payload, parser)
	} else {
		otlpSpan, err = parseOTLPPB(payload)
	}
	if err != nil {
		return err
	}
	span.OperationName = otlpSpan.Name
	for _, kv := range otlpSpan.Attributes {
		if kv == nil {
			continue
		}
		span.Tags = append(span.Tags, model.Tag{Key: kv.Key, Value: anyValue(kv.Value)})
	}
	return nil
}

func parseOTLPPB(payload string) (*v1.Span, error) {
	span := &v1.Span{}
	err := proto.Unmarshal([]byte(payload), span)
	return span, err
}

// parseOTLPJson reads the OTLP/JSON span fields the behaviour engine needs.
// Ids are left out: OTLP/JSON encodes them as hex, which protojson rejects.
func parseOTLPJson(payload string, parser *fastjson.Parser) (*v1.Span, error) {
	root, err := parser.Parse(payload)
	if err != nil {
		return nil, err
	}
	span := &v1.Span{Name: string(root.GetStringBytes("name"))}
	for _, attr := range root.GetArray("attributes") {
		val := &common.AnyValue{}
		setRawValue(attr.Get("value"), val)
		span.Attributes = append(span.Attributes, &common.KeyValue{
			Key:   string(attr.GetStringBytes("key")),
			Value: val,
		})
	}
	return span, nil
}

func setRawValue(rawVal *fastjson.Value, val *common.AnyValue) {
	if rawVal == nil {
		return
	}
	if v := rawVal.Get("stringValue"); v != nil {
		val.Value = &common.AnyValue_StringValue{StringValue: string(v.GetStringBytes())}
	}
	if v := rawVal.Get("intValue"); v != nil {
		val.Value = &common.AnyValue_IntValue{IntValue: toInt64(v)}
	}
	if v := rawVal.Get("boolValue"); v != nil {
		val.Value = &common.AnyValue_BoolValue{BoolValue: v.GetBool()}
	}
	if v := rawVal.Get("doubleValue"); v != nil {
		val.Value = &common.AnyValue_DoubleValue{DoubleValue: toFloat64(v)}
	}
}

// OTLP/JSON carries 64 bit integers as strings.
func toInt64(v *fastjson.Value) int64 {
	if v.Type() == fastjson.TypeString {
		res, _ := strconv.ParseInt(string(v.GetStringBytes()), 10, 64)
		return res
	}
	return v.GetInt64()
}

func toFloat64(v *fastjson.Value) float64 {
	if v.Type() == fastjson.TypeString {
		res, _ := strconv.ParseFloat(string(v.GetStringBytes()), 64)
		return res
	}
	return v.GetFloat64()
}

func anyValue(v *common.AnyValue) model.TagValue {
	if v == nil {
		return model.StringValue("")
	}
	switch val := v.Value.(type) {
	case *common.AnyValue_IntValue:
		return model.IntValue(val.IntValue)
	case *common.AnyValue_DoubleValue:
		return model.FloatValue(val.DoubleValue)
	case *common.AnyValue_BoolValue:
		return model.BoolValue(val.BoolValue)
	case *common.AnyValue_StringValue:
		return model.StringValue(val.StringValue)
	case *common.AnyValue_BytesValue:
		return model.StringValue(string(val.BytesValue))
	}
	return model.StringValue("")
}
