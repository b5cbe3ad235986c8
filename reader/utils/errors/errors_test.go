package custom_errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Code(NewNotFoundError("trace abc not found")))
	assert.Equal(t, http.StatusBadRequest, Code(fmt.Errorf("parse: %w", New400Error("bad limit"))))
	assert.Equal(t, http.StatusInternalServerError, Code(fmt.Errorf("boom")))
}

func TestSourceUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:9000: connection refused")
	err := NewSourceUnavailableError("clickhouse", errors.Wrap(cause, "query tempo_traces"))
	assert.Equal(t, http.StatusBadGateway, Code(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "clickhouse")
}
