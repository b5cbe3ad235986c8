package behavior

import (
	"testing"

	"github.com/metrico/tracebehavior/reader/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAlertsStatus(t *testing.T) {
	spans := []model.Span{
		processSpan("ok", 1, "1", "10", str(model.TagSigmaAlert, "T1003")),
		processSpan("err", 2, "1", "11", str(model.TagSigmaAlert, "T1059"),
			model.Tag{Key: model.TagError, Value: model.BoolValue(true)}),
		processSpan("str-true", 3, "1", "12", str(model.TagSigmaAlert, "T1105"),
			str(model.TagError, "true")),
		processSpan("plain", 4, "1", "13"),
	}
	alerts := ExtractAlerts(spans)
	require.Len(t, alerts, 3)
	assert.Equal(t, "ok", alerts[0].SpanID)
	assert.Equal(t, model.AlertStatusOK, alerts[0].Status)
	assert.Equal(t, "err", alerts[1].SpanID)
	assert.Equal(t, model.AlertStatusError, alerts[1].Status)
	assert.Equal(t, "T1059", alerts[1].AlertLabel)
	assert.Equal(t, model.AlertStatusOK, alerts[2].Status)
}

func TestExtractAlertsFields(t *testing.T) {
	span := processSpan("s", 5, "1", "99",
		str(model.TagSigmaAlert, "Suspicious Shell"),
		str(model.TagImage, `C:\Windows\System32\cmd.exe`),
		str(model.TagCommandLine, "cmd.exe /c dir"))
	alerts := ExtractAlerts([]model.Span{span})
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertRecord{
		SpanID:        "s",
		OperationName: "evt:1",
		AlertLabel:    "Suspicious Shell",
		Image:         `C:\Windows\System32\cmd.exe`,
		CommandLine:   "cmd.exe /c dir",
		PID:           "99",
		EventID:       "1",
		StartTime:     5,
		Duration:      1,
		Status:        model.AlertStatusOK,
	}, alerts[0])
}

func TestExtractAlertsKeepsSpanOrder(t *testing.T) {
	alerts := ExtractAlerts([]model.Span{
		processSpan("late", 50, "1", "1", str(model.TagSigmaAlert, "a")),
		processSpan("early", 10, "1", "2", str(model.TagSigmaAlert, "b")),
	})
	require.Len(t, alerts, 2)
	assert.Equal(t, "late", alerts[0].SpanID)
	assert.Equal(t, "early", alerts[1].SpanID)
}

func TestExtractAlertsNone(t *testing.T) {
	alerts := ExtractAlerts(nil)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
