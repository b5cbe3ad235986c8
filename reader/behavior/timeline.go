package behavior

import (
	"sort"
	"strings"

	"github.com/metrico/tracebehavior/reader/model"
)

// SortByTimestamp returns the events ordered by timestamp. Events sharing a
// timestamp keep their relative order. The input slice is left untouched.
func SortByTimestamp(events []model.NormalizedEvent) []model.NormalizedEvent {
	res := make([]model.NormalizedEvent, len(events))
	copy(res, events)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp < res[j].Timestamp
	})
	return res
}

// Deduplicate collapses process start/stop events into an alternating
// started/stopped sequence per pid. Events are consumed in the given order,
// all pids sharing a single pass:
//
//	Stopped + start -> emit, Running
//	Stopped + stop  -> drop
//	Running + start -> drop
//	Running + stop  -> emit, Stopped
//
// Events of any other kind and events without a pid are dropped.
func Deduplicate(events []model.NormalizedEvent) []model.TimelineEvent {
	states := make(map[string]model.ProcessState)
	res := make([]model.TimelineEvent, 0)
	for _, e := range events {
		if e.EventType != model.EventKindProcessStart && e.EventType != model.EventKindProcessStop {
			continue
		}
		if e.PID == "" {
			continue
		}
		state := states[e.PID]
		switch {
		case state == model.ProcessStopped && e.EventType == model.EventKindProcessStart:
			states[e.PID] = model.ProcessRunning
		case state == model.ProcessRunning && e.EventType == model.EventKindProcessStop:
			states[e.PID] = model.ProcessStopped
		default:
			continue
		}
		res = append(res, model.TimelineEvent{
			NormalizedEvent:     e,
			BehaviorDescription: DescribeBehavior(e),
		})
	}
	return res
}

// DescribeBehavior renders a one line, human readable action for the event.
func DescribeBehavior(e model.NormalizedEvent) string {
	name := imageBaseName(e.Image)
	switch e.EventType {
	case model.EventKindProcessStart:
		return name + " 실행"
	case model.EventKindProcessStop:
		return name + " 종료"
	case model.EventKindFileCreate:
		return name + " 파일생성"
	}
	return name + " 작업"
}

func imageBaseName(image string) string {
	if image == "" {
		return "unknown"
	}
	if i := strings.LastIndexAny(image, `\/`); i >= 0 {
		return image[i+1:]
	}
	return image
}

// BuildTimeline runs the whole timeline pipeline over a trace.
func BuildTimeline(trace model.Trace) []model.TimelineEvent {
	return Deduplicate(SortByTimestamp(ProjectSpans(trace.Spans)))
}
