package behavior

import (
	"github.com/metrico/tracebehavior/reader/model"
)

// ExtractAlerts returns an alert record for each span carrying a sigma.alert
// tag, in span order.
func ExtractAlerts(spans []model.Span) []model.AlertRecord {
	res := make([]model.AlertRecord, 0)
	for _, span := range spans {
		tags := NormalizeTags(span.Tags)
		alert, ok := tags[model.TagSigmaAlert]
		if !ok {
			continue
		}
		status := model.AlertStatusOK
		if tags[model.TagError].IsTrue() {
			status = model.AlertStatusError
		}
		res = append(res, model.AlertRecord{
			SpanID:        span.SpanID,
			OperationName: span.OperationName,
			AlertLabel:    alert.String(),
			Image:         tagString(tags, model.TagImage),
			CommandLine:   tagString(tags, model.TagCommandLine),
			PID:           tagString(tags, model.TagPID),
			EventID:       tagString(tags, model.TagEventID),
			StartTime:     span.StartTime,
			Duration:      span.Duration,
			Status:        status,
		})
	}
	return res
}
