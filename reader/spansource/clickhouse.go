package spansource

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/model"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// ClickhouseSource reads spans written to the tempo_traces table.
type ClickhouseSource struct {
	Registry model.IDBRegistry
}

var _ model.ISpanSource = &ClickhouseSource{}

func NewClickhouseSource(registry model.IDBRegistry) *ClickhouseSource {
	return &ClickhouseSource{Registry: registry}
}

func (c *ClickhouseSource) Name() string {
	return config.SourceClickhouse
}

func tracesTable(conn *model.DataDatabasesMap) string {
	if conn.Config != nil && conn.Config.ClusterName != "" {
		return "tempo_traces_dist"
	}
	return "tempo_traces"
}

// normalizeTraceID returns the 32 char lower case hex form of a trace id,
// left padding short ids the way they are stored.
func normalizeTraceID(traceID string) (string, bool) {
	traceID = strings.ToLower(strings.TrimSpace(traceID))
	if traceID == "" || len(traceID) > 32 {
		return "", false
	}
	if _, err := hex.DecodeString(strings.Repeat("0", len(traceID)%2) + traceID); err != nil {
		return "", false
	}
	return strings.Repeat("0", 32-len(traceID)) + traceID, true
}

func tracesQuery(table string, limit int) string {
	query := "SELECT lower(hex(span_id)), timestamp_ns, duration_ns, payload_type, payload FROM " + table +
		" WHERE trace_id = unhex(?) ORDER BY timestamp_ns ASC"
	if limit > 0 {
		query += " LIMIT ?"
	}
	return query
}

func (c *ClickhouseSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	hexID, ok := normalizeTraceID(traceID)
	if !ok {
		return model.Trace{}, custom_errors.New400Error("trace id must be hex encoded")
	}
	conn, err := c.Registry.GetDB(ctx)
	if err != nil {
		return model.Trace{}, errors.Wrap(err, "get clickhouse connection")
	}
	args := []any{hexID}
	if limit > 0 {
		args = append(args, limit)
	}
	rows, err := conn.Session.QueryCtx(ctx, tracesQuery(tracesTable(conn), limit), args...)
	if err != nil {
		return model.Trace{}, errors.Wrapf(err, "query trace %s", hexID)
	}
	defer rows.Close()

	spans, err := readSpans(rows)
	if err != nil {
		return model.Trace{}, errors.Wrapf(err, "trace %s", hexID)
	}
	return truncate(model.Trace{TraceID: hexID, Spans: spans}, limit), nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// readSpans decodes every tempo_traces row. No rows is an empty trace.
func readSpans(rows rowScanner) ([]model.Span, error) {
	res := make([]model.Span, 0)
	parser := fastjson.Parser{}
	for rows.Next() {
		var row storedSpan
		err := rows.Scan(&row.spanId, &row.startTimeNs, &row.durationNs, &row.payloadType, &row.payload)
		if err != nil {
			return nil, errors.Wrap(err, "scan tempo_traces row")
		}
		span, err := row.toSpan(&parser)
		if err != nil {
			return nil, errors.Wrapf(err, "decode span %s", row.spanId)
		}
		res = append(res, span)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read tempo_traces rows")
	}
	return res, nil
}

func (c *ClickhouseSource) Ping(ctx context.Context) error {
	return errors.Wrap(c.Registry.Ping(), "clickhouse ping")
}
