package spansource

import (
	"testing"

	"github.com/metrico/tracebehavior/reader/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
	common "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"
)

func TestZipkinPayload(t *testing.T) {
	row := storedSpan{
		spanId:      "00000000000000a1",
		startTimeNs: 5_000_000,
		durationNs:  3_000,
		payloadType: payloadZipkinJSON,
		payload:     `{"name":"evt:1","tags":{"sysmon.event_id":"1","sysmon.pid":"77","error":"true"}}`,
	}
	span, err := row.toSpan(&fastjson.Parser{})
	require.NoError(t, err)
	assert.Equal(t, model.Span{
		SpanID:        "00000000000000a1",
		OperationName: "evt:1",
		StartTime:     5_000,
		Duration:      3,
		Tags: []model.Tag{
			{Key: "sysmon.event_id", Value: model.StringValue("1")},
			{Key: "sysmon.pid", Value: model.StringValue("77")},
			{Key: "error", Value: model.StringValue("true")},
		},
	}, span)
}

func TestOTLPJSONPayload(t *testing.T) {
	row := storedSpan{
		spanId:      "b2",
		payloadType: payloadOTLP,
		payload: `{"traceId":"4bf92f3577b34da6a3ce929d0e0e4736","name":"evt:5","attributes":[
			{"key":"sysmon.pid","value":{"intValue":"4412"}},
			{"key":"error","value":{"boolValue":true}},
			{"key":"score","value":{"doubleValue":0.25}},
			{"key":"Image","value":{"stringValue":"x.exe"}}]}`,
	}
	span, err := row.toSpan(&fastjson.Parser{})
	require.NoError(t, err)
	assert.Equal(t, "evt:5", span.OperationName)
	assert.Equal(t, []model.Tag{
		{Key: "sysmon.pid", Value: model.IntValue(4412)},
		{Key: "error", Value: model.BoolValue(true)},
		{Key: "score", Value: model.FloatValue(0.25)},
		{Key: "Image", Value: model.StringValue("x.exe")},
	}, span.Tags)
}

func TestOTLPProtoPayload(t *testing.T) {
	raw, err := proto.Marshal(&v1.Span{
		Name: "evt:11",
		Attributes: []*common.KeyValue{
			{Key: "sysmon.event_id", Value: &common.AnyValue{Value: &common.AnyValue_StringValue{StringValue: "11"}}},
			{Key: "sysmon.pid", Value: &common.AnyValue{Value: &common.AnyValue_IntValue{IntValue: 9}}},
		},
	})
	require.NoError(t, err)
	row := storedSpan{spanId: "c3", payloadType: payloadOTLP, payload: string(raw)}
	span, err := row.toSpan(&fastjson.Parser{})
	require.NoError(t, err)
	assert.Equal(t, "evt:11", span.OperationName)
	assert.Equal(t, []model.Tag{
		{Key: "sysmon.event_id", Value: model.StringValue("11")},
		{Key: "sysmon.pid", Value: model.IntValue(9)},
	}, span.Tags)
}

func TestUnknownPayloadType(t *testing.T) {
	row := storedSpan{spanId: "d4", payloadType: 9, payload: "{}"}
	_, err := row.toSpan(&fastjson.Parser{})
	assert.Error(t, err)
}

func TestNormalizeTraceID(t *testing.T) {
	id, ok := normalizeTraceID("ABC")
	assert.True(t, ok)
	assert.Equal(t, "00000000000000000000000000000abc", id)

	id, ok = normalizeTraceID(sampleTraceID)
	assert.True(t, ok)
	assert.Equal(t, sampleTraceID, id)

	for _, bad := range []string{"", "xyz", sampleTraceID + "00"} {
		_, ok = normalizeTraceID(bad)
		assert.False(t, ok, bad)
	}
}

func TestTracesQuery(t *testing.T) {
	assert.Equal(t,
		"SELECT lower(hex(span_id)), timestamp_ns, duration_ns, payload_type, payload FROM tempo_traces"+
			" WHERE trace_id = unhex(?) ORDER BY timestamp_ns ASC LIMIT ?",
		tracesQuery("tempo_traces", 100))
	assert.NotContains(t, tracesQuery("tempo_traces_dist", 0), "LIMIT")
}

type fakeRows struct {
	rows []storedSpan
	pos  int
	err  error
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]
	*dest[0].(*string) = row.spanId
	*dest[1].(*int64) = row.startTimeNs
	*dest[2].(*int64) = row.durationNs
	*dest[3].(*int) = row.payloadType
	*dest[4].(*string) = row.payload
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func TestReadSpans(t *testing.T) {
	spans, err := readSpans(&fakeRows{})
	require.NoError(t, err)
	assert.NotNil(t, spans)
	assert.Empty(t, spans)

	spans, err = readSpans(&fakeRows{rows: []storedSpan{{
		spanId:      "a1",
		startTimeNs: 2_000,
		payloadType: payloadZipkinJSON,
		payload:     `{"name":"evt:11","tags":{"sysmon.event_id":"11"}}`,
	}}})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "evt:11", spans[0].OperationName)
	assert.Equal(t, int64(2), spans[0].StartTime)

	_, err = readSpans(&fakeRows{err: assert.AnError})
	assert.ErrorIs(t, err, assert.AnError)
}
