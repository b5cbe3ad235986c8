package controllerv1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/c2h5oh/datasize"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/metrico/tracebehavior/reader/metric"
	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/spansource"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"gopkg.in/go-playground/validator.v9"
)

type BehaviorController struct {
	Controller
	Service      model.IBehaviorService
	DefaultLimit int
	MaxBodySize  datasize.ByteSize
}

type BehaviorProps struct {
	Limit  int  `schema:"limit" validate:"min=1,max=10000"`
	Nested bool `schema:"nested"`
}

var (
	propsDecoder = newPropsDecoder()
	validate     = validator.New()
)

func newPropsDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func (b *BehaviorController) parseProps(r *http.Request) (string, BehaviorProps, error) {
	props := BehaviorProps{Limit: b.DefaultLimit}
	traceId := mux.Vars(r)["traceId"]
	if traceId == "" {
		return "", props, custom_errors.New400Error("traceId is required")
	}
	if err := propsDecoder.Decode(&props, r.URL.Query()); err != nil {
		return "", props, custom_errors.New400Error(err.Error())
	}
	if err := validate.Struct(props); err != nil {
		return "", props, custom_errors.New400Error("limit must be between 1 and 10000")
	}
	return traceId, props, nil
}

func (b *BehaviorController) fail(operation string, err error, w http.ResponseWriter) {
	code := custom_errors.Code(err)
	metric.Requests.WithLabelValues(operation, strconv.Itoa(code)).Inc()
	if code >= 500 {
		logger.Error("[BC", operation, "] ", err.Error())
	}
	PromError(code, err.Error(), w)
}

func (b *BehaviorController) respond(operation string, res any, w http.ResponseWriter) {
	if err := writeJSON(http.StatusOK, res, w); err != nil {
		logger.Error("[BC", operation, "] write response: ", err.Error())
		metric.Requests.WithLabelValues(operation, "500").Inc()
		return
	}
	metric.Requests.WithLabelValues(operation, "200").Inc()
}

func (b *BehaviorController) Timeline(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("timeline", err, w)
		return
	}
	res, err := b.Service.Timeline(r.Context(), traceId, props.Limit)
	if err != nil {
		b.fail("timeline", err, w)
		return
	}
	b.respond("timeline", res, w)
}

func (b *BehaviorController) ProcessTree(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("process-tree", err, w)
		return
	}
	res, err := b.Service.ProcessTree(r.Context(), traceId, props.Limit, props.Nested)
	if err != nil {
		b.fail("process-tree", err, w)
		return
	}
	b.respond("process-tree", res, w)
}

func (b *BehaviorController) SecurityAlerts(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("security-alerts", err, w)
		return
	}
	res, err := b.Service.SecurityAlerts(r.Context(), traceId, props.Limit)
	if err != nil {
		b.fail("security-alerts", err, w)
		return
	}
	b.respond("security-alerts", res, w)
}

func (b *BehaviorController) Metrics(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("metrics", err, w)
		return
	}
	res, err := b.Service.Metrics(r.Context(), traceId, props.Limit)
	if err != nil {
		b.fail("metrics", err, w)
		return
	}
	b.respond("metrics", res, w)
}

func (b *BehaviorController) Report(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("report", err, w)
		return
	}
	res, err := b.Service.Report(r.Context(), traceId, props.Limit)
	if err != nil {
		b.fail("report", err, w)
		return
	}
	b.respond("report", res, w)
}

func (b *BehaviorController) ProcessEvents(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("process-events", err, w)
		return
	}
	pid := mux.Vars(r)["pid"]
	if pid == "" {
		b.fail("process-events", custom_errors.New400Error("pid is required"), w)
		return
	}
	res, err := b.Service.ProcessEvents(r.Context(), traceId, pid, props.Limit)
	if err != nil {
		b.fail("process-events", err, w)
		return
	}
	b.respond("process-events", res, w)
}

func (b *BehaviorController) SecurityPatterns(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("security-patterns", err, w)
		return
	}
	res, err := b.Service.SecurityPatterns(r.Context(), traceId, props.Limit)
	if err != nil {
		b.fail("security-patterns", err, w)
		return
	}
	b.respond("security-patterns", res, w)
}

func (b *BehaviorController) EventHistogram(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	traceId, props, err := b.parseProps(r)
	if err != nil {
		b.fail("event-histogram", err, w)
		return
	}
	res, err := b.Service.EventHistogram(r.Context(), traceId, props.Limit)
	if err != nil {
		b.fail("event-histogram", err, w)
		return
	}
	b.respond("event-histogram", res, w)
}

// Analyze runs the engine over a trace document posted in the body.
func (b *BehaviorController) Analyze(w http.ResponseWriter, r *http.Request) {
	defer tamePanic(w, r)
	if b.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(b.MaxBodySize.Bytes()))
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			b.fail("analyze", custom_errors.New413Error("request body exceeds "+b.MaxBodySize.HR()), w)
			return
		}
		b.fail("analyze", custom_errors.New400Error(err.Error()), w)
		return
	}
	trace, err := spansource.DecodeJaegerTrace(body)
	if err != nil {
		b.fail("analyze", err, w)
		return
	}
	res, err := b.Service.Analyze(r.Context(), trace)
	if err != nil {
		b.fail("analyze", err, w)
		return
	}
	b.respond("analyze", res, w)
}
