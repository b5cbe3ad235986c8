package behavior

import (
	"github.com/metrico/tracebehavior/reader/model"
)

func str(k, v string) model.Tag {
	return model.Tag{Key: k, Value: model.StringValue(v)}
}

func processSpan(id string, ts int64, eventID, pid string, extra ...model.Tag) model.Span {
	tags := []model.Tag{str(model.TagEventID, eventID), str(model.TagPID, pid)}
	return model.Span{
		SpanID:        id,
		OperationName: "evt:" + eventID,
		StartTime:     ts,
		Duration:      1,
		Tags:          append(tags, extra...),
	}
}
