package behavior

import (
	"github.com/metrico/tracebehavior/reader/model"
)

// ProjectEvent maps one span and its normalized tags to a process event.
// Missing tags become empty strings.
func ProjectEvent(span model.Span, tags model.TagMap) model.NormalizedEvent {
	alert, hasAlert := tags[model.TagSigmaAlert]
	res := model.NormalizedEvent{
		Timestamp:     span.StartTime,
		OperationName: span.OperationName,
		EventType:     eventKind(tags),
		Image:         tagString(tags, model.TagImage),
		HasAlert:      hasAlert,
		PID:           tagString(tags, model.TagPID),
		ParentPID:     tagString(tags, model.TagPPID),
		User:          tagString(tags, model.TagUser),
		Duration:      span.Duration,
		EventName:     tagString(tags, model.TagEventName),
	}
	if hasAlert {
		res.Alert = alert.String()
	}
	if cmd, ok := tags[model.TagCommandLine]; ok {
		res.CommandLine = cmd.String()
		res.MainCommand = res.CommandLine
		if cmd.IsString() {
			res.MainCommand = ExtractExecutableName(cmd.Str)
		}
	}
	return res
}

// ProjectSpans projects every span in its original order.
func ProjectSpans(spans []model.Span) []model.NormalizedEvent {
	res := make([]model.NormalizedEvent, 0, len(spans))
	for _, span := range spans {
		res = append(res, ProjectEvent(span, NormalizeTags(span.Tags)))
	}
	return res
}
