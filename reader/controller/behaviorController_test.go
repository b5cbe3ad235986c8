package controllerv1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/gorilla/mux"
	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/service"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	trace     model.Trace
	err       error
	lastLimit int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	s.lastLimit = limit
	if s.err != nil {
		return model.Trace{}, s.err
	}
	trace := s.trace
	trace.TraceID = traceID
	return trace, nil
}

func (s *stubSource) Ping(ctx context.Context) error { return nil }

func strTag(k, v string) model.Tag {
	return model.Tag{Key: k, Value: model.StringValue(v)}
}

func newTestRouter(src *stubSource) *mux.Router {
	ctrl := &BehaviorController{
		Service:      service.NewBehaviorService(model.ServiceData{Source: src}),
		DefaultLimit: 1000,
		MaxBodySize:  datasize.KB,
	}
	app := mux.NewRouter()
	app.HandleFunc("/api/traces/{traceId}/timeline", ctrl.Timeline).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/process-tree", ctrl.ProcessTree).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/security-alerts", ctrl.SecurityAlerts).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/metrics", ctrl.Metrics).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/report", ctrl.Report).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/processes/{pid}/events", ctrl.ProcessEvents).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/security-patterns", ctrl.SecurityPatterns).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/event-histogram", ctrl.EventHistogram).Methods("GET")
	app.HandleFunc("/api/analyze", ctrl.Analyze).Methods("POST")
	return app
}

func serve(app http.Handler, method, url, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	app.ServeHTTP(rec, req)
	return rec
}

func alertTrace() model.Trace {
	return model.Trace{Spans: []model.Span{
		{SpanID: "s1", OperationName: "evt:1", StartTime: 100, Duration: 4, Tags: []model.Tag{
			strTag(model.TagEventID, "1"), strTag(model.TagPID, "10"),
			strTag(model.TagImage, `C:\tools\mimikatz.exe`), strTag(model.TagSigmaAlert, "Mimikatz"),
			strTag(model.TagCommandLine, `mimikatz.exe privilege::debug`),
		}},
	}}
}

func TestTimelineEndpoint(t *testing.T) {
	src := &stubSource{trace: alertTrace()}
	rec := serve(newTestRouter(src), "GET", "/api/traces/abc/timeline", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1000, src.lastLimit)
	assert.JSONEq(t, `{"timeline":[{
		"timestamp":100,"operationName":"evt:1","eventType":"1","image":"C:\\tools\\mimikatz.exe",
		"hasAlert":true,"alert":"Mimikatz","pid":"10","parentPid":"",
		"commandLine":"mimikatz.exe privilege::debug","mainCommand":"mimikatz.exe",
		"user":"","duration":4,"eventName":"","behaviorDescription":"mimikatz.exe 실행"}]}`,
		rec.Body.String())
}

func TestSecurityAlertsEndpoint(t *testing.T) {
	rec := serve(newTestRouter(&stubSource{trace: alertTrace()}), "GET", "/api/traces/abc/security-alerts", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"traceId":"abc","total":1,"alerts":[{
		"spanId":"s1","operationName":"evt:1","alertLabel":"Mimikatz","image":"C:\\tools\\mimikatz.exe",
		"commandLine":"mimikatz.exe privilege::debug","pid":"10","eventId":"1",
		"startTime":100,"duration":4,"status":"OK"}]}`, rec.Body.String())
}

func TestMetricsEndpointOnEmptyTrace(t *testing.T) {
	rec := serve(newTestRouter(&stubSource{}), "GET", "/api/traces/empty/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"traceId":"empty","totalSpans":0,"securityAlerts":0,"processEvents":0,
		"fileEvents":0,"alertTypes":0,"alertTypesList":[]}`, rec.Body.String())
}

func TestProcessTreeEndpoint(t *testing.T) {
	app := newTestRouter(&stubSource{trace: alertTrace()})
	rec := serve(app, "GET", "/api/traces/abc/process-tree?nested=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"processes":[{`)
	assert.Contains(t, rec.Body.String(), `"children":[]`)
}

func TestReportEndpoint(t *testing.T) {
	rec := serve(newTestRouter(&stubSource{trace: alertTrace()}), "GET", "/api/traces/abc/report?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, key := range []string{`"timeline"`, `"processTree"`, `"securityAlerts"`, `"metrics"`} {
		assert.Contains(t, rec.Body.String(), key)
	}
}

func TestProcessEventsEndpoint(t *testing.T) {
	app := newTestRouter(&stubSource{trace: alertTrace()})
	rec := serve(app, "GET", "/api/traces/abc/processes/10/events", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"traceId":"abc","pid":"10","events":[{`)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = serve(app, "GET", "/api/traces/abc/processes/11/events", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"traceId":"abc","pid":"11","events":[],"total":0}`, rec.Body.String())
}

func TestSecurityPatternsEndpoint(t *testing.T) {
	rec := serve(newTestRouter(&stubSource{trace: alertTrace()}), "GET", "/api/traces/abc/security-patterns", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"traceId":"abc",
		"alertTypes":[{"key":"Mimikatz","docCount":1}],
		"processImages":[{"key":"C:\\tools\\mimikatz.exe","docCount":1}]}`, rec.Body.String())
}

func TestEventHistogramEndpoint(t *testing.T) {
	rec := serve(newTestRouter(&stubSource{trace: alertTrace()}), "GET", "/api/traces/abc/event-histogram", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"traceId":"abc","interval":"1s","buckets":[
		{"key":0,"keyAsString":"1970-01-01 00:00:00","docCount":1,"eventTypes":[{"key":"1","docCount":1}]}]}`,
		rec.Body.String())
}

func TestLimitValidation(t *testing.T) {
	app := newTestRouter(&stubSource{})
	for _, q := range []string{"limit=0", "limit=10001", "limit=abc"} {
		rec := serve(app, "GET", "/api/traces/abc/timeline?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), `"status":"error"`, q)
	}
	src := &stubSource{}
	rec := serve(newTestRouter(src), "GET", "/api/traces/abc/timeline?limit=10000", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10000, src.lastLimit)
}

func TestSourceErrorsMapToStatus(t *testing.T) {
	rec := serve(newTestRouter(&stubSource{err: custom_errors.NewNotFoundError("trace abc not found")}),
		"GET", "/api/traces/abc/timeline", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"error","errorType":"error","error":"trace abc not found"}`, rec.Body.String())

	rec = serve(newTestRouter(&stubSource{err: errors.New("connection refused")}),
		"GET", "/api/traces/abc/metrics", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	app := newTestRouter(&stubSource{})
	rec := serve(app, "POST", "/api/analyze", `{"data":[{"traceID":"t9","spans":[
		{"spanID":"a","operationName":"evt:11","startTime":1,
		 "tags":[{"key":"sysmon.event_id","type":"string","value":"11"}]}]}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"traceId":"t9"`)
	assert.Contains(t, rec.Body.String(), `"fileEvents":1`)

	rec = serve(app, "POST", "/api/analyze", `{"spans":[`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(app, "POST", "/api/analyze", `{"traceID":"big","spans":[],"pad":"`+strings.Repeat("x", 2048)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTamePanic(t *testing.T) {
	app := mux.NewRouter()
	app.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		defer tamePanic(w, r)
		panic("boom")
	})
	rec := serve(app, "GET", "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
