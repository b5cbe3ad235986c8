package watchdog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metrico/tracebehavior/reader/model"
	"github.com/stretchr/testify/assert"
)

type downSource struct{}

func (downSource) Name() string { return "down" }

func (downSource) FetchTrace(ctx context.Context, traceID string, limit int) (model.Trace, error) {
	return model.Trace{}, errors.New("down")
}

func (downSource) Ping(ctx context.Context) error { return errors.New("down") }

func TestCheck(t *testing.T) {
	svc = &model.ServiceData{Source: downSource{}}

	report(nil)
	assert.NoError(t, Check())

	mtx.Lock()
	lastSuccessfulCheck = time.Now().Add(-time.Minute)
	mtx.Unlock()
	report(svc.Ping())
	assert.Error(t, Check())
	assert.Equal(t, 1, retries)

	report(nil)
	assert.NoError(t, Check())
	assert.Equal(t, 0, retries)
}
