package spansource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/model"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/pkg/errors"
)

const maxSearchSize = 10000

// ElasticSource searches an index of Jaeger documents. A hit is either a
// whole trace ({"traceID":..,"spans":[..]}) or a single span, as written by
// the Jaeger Elasticsearch storage.
type ElasticSource struct {
	Client *elasticsearch.Client
	Index  string
}

var _ model.ISpanSource = &ElasticSource{}

func NewElasticSource(s config.BehaviorSettings) (*ElasticSource, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  strings.Split(s.ESURL, ","),
		Username:   s.ESUser,
		Password:   s.ESPassword,
		MaxRetries: int(s.SourceRetries),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create elasticsearch client")
	}
	return &ElasticSource{Client: client, Index: s.ESIndex}, nil
}

func (e *ElasticSource) Name() string {
	return config.SourceElasticsearch
}

type esHit struct {
	Source json.RawMessage `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

func searchBody(traceID string, size int) io.Reader {
	stream := jaegerJSON.BorrowStream(nil)
	defer jaegerJSON.ReturnStream(stream)
	stream.WriteObjectStart()
	stream.WriteObjectField("size")
	stream.WriteInt(size)
	stream.WriteMore()
	stream.WriteObjectField("query")
	stream.WriteObjectStart()
	stream.WriteObjectField("term")
	stream.WriteObjectStart()
	stream.WriteObjectField("traceID")
	stream.WriteString(traceID)
	stream.WriteObjectEnd()
	stream.WriteObjectEnd()
	stream.WriteMore()
	stream.WriteObjectField("sort")
	stream.WriteRaw(`[{"startTime":{"order":"asc","unmapped_type":"long"}}]`)
	stream.WriteObjectEnd()
	return strings.NewReader(string(stream.Buffer()))
}

func (e *ElasticSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	if traceID == "" {
		return model.Trace{}, custom_errors.New400Error("invalid trace id")
	}
	size := maxSearchSize
	if limit > 0 && limit < size {
		size = limit
	}
	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(searchBody(traceID, size)),
	)
	if err != nil {
		return model.Trace{}, errors.Wrapf(err, "search trace %s in %s", traceID, e.Index)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return model.Trace{}, errors.Wrap(err, "read search response")
	}
	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return model.Trace{}, errors.Errorf("index %s does not exist", e.Index)
		}
		return model.Trace{}, errors.Errorf("search trace %s: %s", traceID, res.String())
	}

	var sr esSearchResponse
	if err := jaegerJSON.Unmarshal(body, &sr); err != nil {
		return model.Trace{}, errors.Wrap(err, "decode search response")
	}
	trace := model.Trace{TraceID: traceID, Spans: []model.Span{}}
	for _, hit := range sr.Hits.Hits {
		var doc struct {
			jaegerSpan
			Spans []jaegerSpan `json:"spans"`
		}
		if err := jaegerJSON.Unmarshal(hit.Source, &doc); err != nil {
			return model.Trace{}, errors.Wrapf(err, "decode trace %s", traceID)
		}
		spans := doc.Spans
		if spans == nil && doc.SpanID != "" {
			spans = []jaegerSpan{doc.jaegerSpan}
		}
		part := jaegerTrace{TraceID: traceID, Spans: spans}.toModel()
		trace.Spans = append(trace.Spans, part.Spans...)
	}
	return truncate(trace, limit), nil
}

func (e *ElasticSource) Ping(ctx context.Context) error {
	res, err := e.Client.Ping(e.Client.Ping.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "elasticsearch ping")
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}
