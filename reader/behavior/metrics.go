package behavior

import (
	"github.com/metrico/tracebehavior/reader/model"
)

// AggregateMetrics counts spans, alerts and process/file events of a trace in
// a single pass. Alert types are listed in first seen order.
func AggregateMetrics(spans []model.Span) model.Metrics {
	res := model.Metrics{AlertTypesList: make([]string, 0)}
	seen := make(map[string]bool)
	for _, span := range spans {
		tags := NormalizeTags(span.Tags)
		res.TotalSpans++
		if alert, ok := tags[model.TagSigmaAlert]; ok {
			res.SecurityAlerts++
			label := alert.String()
			if !seen[label] {
				seen[label] = true
				res.AlertTypesList = append(res.AlertTypesList, label)
			}
		}
		switch eventKind(tags) {
		case model.EventKindProcessStart:
			res.ProcessEvents++
		case model.EventKindFileCreate:
			res.FileEvents++
		}
	}
	res.AlertTypes = len(res.AlertTypesList)
	return res
}
