package spansource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/model"
	custom_errors "github.com/metrico/tracebehavior/reader/utils/errors"
	"github.com/pkg/errors"
)

// FileSource serves Jaeger trace documents stored as <dir>/<traceId>.json.
type FileSource struct {
	Dir string
}

var _ model.ISpanSource = &FileSource{}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (f *FileSource) Name() string {
	return config.SourceFile
}

func (f *FileSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	if traceID == "" || strings.ContainsAny(traceID, `/\`) || strings.Contains(traceID, "..") {
		return model.Trace{}, custom_errors.New400Error("invalid trace id")
	}
	if err := ctx.Err(); err != nil {
		return model.Trace{}, err
	}
	data, err := os.ReadFile(filepath.Join(f.Dir, traceID+".json"))
	if os.IsNotExist(err) {
		return model.Trace{}, custom_errors.NewNotFoundError("trace " + traceID + " not found")
	}
	if err != nil {
		return model.Trace{}, errors.Wrapf(err, "read trace %s", traceID)
	}
	trace, err := DecodeJaegerTrace(data)
	if err != nil {
		return model.Trace{}, wrapDecode(err, traceID)
	}
	if trace.TraceID == "" {
		trace.TraceID = traceID
	}
	return truncate(trace, limit), nil
}

func (f *FileSource) Ping(ctx context.Context) error {
	st, err := os.Stat(f.Dir)
	if err != nil {
		return errors.Wrap(err, "trace dir")
	}
	if !st.IsDir() {
		return errors.Errorf("trace dir %s is not a directory", f.Dir)
	}
	return nil
}
