package spansource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/model"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"github.com/pkg/errors"
)

// JaegerSource reads traces from the Jaeger query API.
type JaegerSource struct {
	URL        string
	Attempts   uint
	RetryDelay time.Duration
	Client     *http.Client
}

var _ model.ISpanSource = &JaegerSource{}

func NewJaegerSource(baseURL string, attempts uint, timeout time.Duration) *JaegerSource {
	if attempts == 0 {
		attempts = 1
	}
	return &JaegerSource{
		URL:        strings.TrimRight(baseURL, "/"),
		Attempts:   attempts,
		RetryDelay: 500 * time.Millisecond,
		Client:     &http.Client{Timeout: timeout},
	}
}

func (j *JaegerSource) Name() string {
	return config.SourceJaeger
}

// statusError is a non-2xx answer from Jaeger. 5xx answers are retried.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("jaeger responded %d: %s", e.code, e.body)
}

func retryable(err error) bool {
	if custom_errors.Code(err) == http.StatusNotFound {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}

func (j *JaegerSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	if traceID == "" {
		return model.Trace{}, custom_errors.New400Error("invalid trace id")
	}
	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = j.get(ctx, "/api/traces/"+url.PathEscape(traceID))
			if err != nil && retryable(err) {
				logger.Debug("jaeger fetch of ", traceID, " failed, retrying: ", err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(j.Attempts),
		retry.Delay(j.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if custom_errors.Code(err) == http.StatusNotFound {
			return model.Trace{}, err
		}
		return model.Trace{}, errors.Wrapf(err, "fetch trace %s from %s", traceID, j.URL)
	}
	trace, err := DecodeJaegerTrace(body)
	if err != nil {
		return model.Trace{}, wrapDecode(err, traceID)
	}
	if trace.TraceID == "" {
		trace.TraceID = traceID
	}
	return truncate(trace, limit), nil
}

func (j *JaegerSource) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.URL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := j.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, custom_errors.NewNotFoundError("trace not found in jaeger")
	case res.StatusCode/100 != 2:
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &statusError{code: res.StatusCode, body: string(body)}
	}
	return body, nil
}

func (j *JaegerSource) Ping(ctx context.Context) error {
	_, err := j.get(ctx, "/api/services")
	return errors.Wrap(err, "jaeger ping")
}
