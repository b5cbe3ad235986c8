package behavior

import (
	"fmt"
	"testing"

	"github.com/metrico/tracebehavior/reader/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsByPID(t *testing.T) {
	spans := []model.Span{
		processSpan("c", 30, "5", "7"),
		processSpan("a", 10, "1", "7"),
		processSpan("x", 5, "1", "8"),
		processSpan("b", 20, "11", "7"),
		processSpan("d", 20, "3", "7"),
	}
	events := EventsByPID(spans, "7")
	require.Len(t, events, 4)
	var ops []string
	for _, e := range events {
		ops = append(ops, e.OperationName)
	}
	assert.Equal(t, []string{"evt:1", "evt:11", "evt:3", "evt:5"}, ops)

	assert.NotNil(t, EventsByPID(spans, "999"))
	assert.Empty(t, EventsByPID(spans, "999"))
}

func TestAnalyzePatterns(t *testing.T) {
	spans := []model.Span{
		processSpan("1", 1, "1", "1", str(model.TagSigmaAlert, "Whoami"), str(model.TagImage, `C:\a\cmd.exe`)),
		processSpan("2", 2, "1", "2", str(model.TagSigmaAlert, "Mimikatz"), str(model.TagImage, `C:\a\mimikatz.exe`)),
		processSpan("3", 3, "1", "3", str(model.TagSigmaAlert, "Whoami"), str(model.TagImage, `C:\a\cmd.exe`)),
		processSpan("4", 4, "11", "3", str(model.TagImage, `C:\a\cmd.exe`)),
		processSpan("5", 5, "1", "4", str(model.TagSigmaAlert, "Encoded PowerShell")),
	}
	res := AnalyzePatterns(spans, DefaultTermsSize)
	assert.Equal(t, []model.TermBucket{
		{Key: "Whoami", DocCount: 2},
		{Key: "Encoded PowerShell", DocCount: 1},
		{Key: "Mimikatz", DocCount: 1},
	}, res.AlertTypes)
	assert.Equal(t, []model.TermBucket{
		{Key: `C:\a\cmd.exe`, DocCount: 3},
		{Key: `C:\a\mimikatz.exe`, DocCount: 1},
	}, res.ProcessImages)

	assert.Equal(t, []model.TermBucket{{Key: "Whoami", DocCount: 2}}, AnalyzePatterns(spans, 1).AlertTypes)
}

func TestAnalyzePatternsKeepsTopTen(t *testing.T) {
	spans := make([]model.Span, 0)
	for i := 0; i < 12; i++ {
		spans = append(spans, processSpan(fmt.Sprint(i), int64(i), "1", "1",
			str(model.TagSigmaAlert, fmt.Sprintf("rule-%02d", i))))
	}
	res := AnalyzePatterns(spans, DefaultTermsSize)
	require.Len(t, res.AlertTypes, 10)
	assert.Equal(t, "rule-00", res.AlertTypes[0].Key)
	assert.Equal(t, "rule-09", res.AlertTypes[9].Key)
	assert.NotNil(t, res.ProcessImages)
	assert.Empty(t, res.ProcessImages)
}

func TestEventHistogram(t *testing.T) {
	const sec = int64(1_700_000_000)
	spans := []model.Span{
		processSpan("c", (sec+2)*1_000_000, "5", "1"),
		processSpan("a", sec*1_000_000+100, "1", "1"),
		processSpan("b", sec*1_000_000+999_999, "11", "1"),
		processSpan("d", sec*1_000_000+500, "11", "2"),
		{SpanID: "e", StartTime: sec*1_000_000 + 700},
	}
	res := EventHistogram(spans)
	require.Len(t, res, 2)

	assert.Equal(t, sec*1000, res[0].Key)
	assert.Equal(t, "2023-11-14 22:13:20", res[0].KeyAsString)
	assert.Equal(t, 4, res[0].DocCount)
	assert.Equal(t, []model.TermBucket{{Key: "11", DocCount: 2}, {Key: "1", DocCount: 1}}, res[0].EventTypes)

	assert.Equal(t, (sec+2)*1000, res[1].Key)
	assert.Equal(t, "2023-11-14 22:13:22", res[1].KeyAsString)
	assert.Equal(t, []model.TermBucket{{Key: "5", DocCount: 1}}, res[1].EventTypes)
}

func TestEventHistogramEmpty(t *testing.T) {
	res := EventHistogram(nil)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), floorDiv(1_500_000, microsPerSecond))
	assert.Equal(t, int64(-1), floorDiv(-1, microsPerSecond))
	assert.Equal(t, int64(-1), floorDiv(-1_000_000, microsPerSecond))
}
