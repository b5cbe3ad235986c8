package behavior

import (
	"sort"
	"time"

	"github.com/metrico/tracebehavior/reader/model"
)

const (
	// DefaultTermsSize is how many ranked values a terms breakdown keeps.
	DefaultTermsSize = 10

	HistogramInterval   = "1s"
	HistogramTimeFormat = "2006-01-02 15:04:05"

	microsPerSecond = int64(time.Second / time.Microsecond)
)

// EventsByPID returns the projected events of one pid ordered by timestamp.
// Every event kind is kept, not only the lifecycle ones.
func EventsByPID(spans []model.Span, pid string) []model.NormalizedEvent {
	res := make([]model.NormalizedEvent, 0)
	for _, e := range ProjectSpans(spans) {
		if e.PID == pid {
			res = append(res, e)
		}
	}
	return SortByTimestamp(res)
}

// AnalyzePatterns ranks alert labels and process images by the number of
// spans carrying them. size <= 0 keeps every value.
func AnalyzePatterns(spans []model.Span, size int) model.SecurityPatterns {
	alerts := make(map[string]int)
	images := make(map[string]int)
	for _, span := range spans {
		tags := NormalizeTags(span.Tags)
		if v, ok := tags[model.TagSigmaAlert]; ok {
			alerts[v.String()]++
		}
		if v, ok := tags[model.TagImage]; ok {
			images[v.String()]++
		}
	}
	return model.SecurityPatterns{
		AlertTypes:    topTerms(alerts, size),
		ProcessImages: topTerms(images, size),
	}
}

// EventHistogram buckets spans by the second they started in and breaks each
// bucket down by sysmon event id. Only non empty buckets are returned, in
// time order.
func EventHistogram(spans []model.Span) []model.TimeBucket {
	type bucket struct {
		count int
		types map[string]int
	}
	buckets := make(map[int64]*bucket)
	seconds := make([]int64, 0)
	for _, span := range spans {
		sec := floorDiv(span.StartTime, microsPerSecond)
		b, ok := buckets[sec]
		if !ok {
			b = &bucket{types: make(map[string]int)}
			buckets[sec] = b
			seconds = append(seconds, sec)
		}
		b.count++
		if v, ok := NormalizeTags(span.Tags)[model.TagEventID]; ok {
			b.types[v.String()]++
		}
	}
	sort.Slice(seconds, func(i, j int) bool { return seconds[i] < seconds[j] })

	res := make([]model.TimeBucket, 0, len(seconds))
	for _, sec := range seconds {
		b := buckets[sec]
		res = append(res, model.TimeBucket{
			Key:         sec * 1000,
			KeyAsString: time.Unix(sec, 0).UTC().Format(HistogramTimeFormat),
			DocCount:    b.count,
			EventTypes:  topTerms(b.types, DefaultTermsSize),
		})
	}
	return res
}

// topTerms orders values by count, highest first, ties by key.
func topTerms(counts map[string]int, size int) []model.TermBucket {
	res := make([]model.TermBucket, 0, len(counts))
	for k, c := range counts {
		res = append(res, model.TermBucket{Key: k, DocCount: c})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].DocCount != res[j].DocCount {
			return res[i].DocCount > res[j].DocCount
		}
		return res[i].Key < res[j].Key
	})
	if size > 0 && len(res) > size {
		res = res[:size]
	}
	return res
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
