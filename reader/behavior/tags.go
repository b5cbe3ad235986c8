// Package behavior rebuilds process behavior out of sysmon enriched spans.
//
// Every function here is a pure function of its input: state tables and maps
// are allocated per call and nothing is cached between calls, so the package
// is safe to use from any number of goroutines.
package behavior

import (
	"github.com/grafana/regexp"
	"github.com/metrico/tracebehavior/reader/model"
)

var executableRe = regexp.MustCompile(`[\p{L}\p{N}_-]+\.exe`)

// NormalizeTags folds a span tag list into a map. A later tag overwrites an
// earlier tag with the same key.
func NormalizeTags(tags []model.Tag) model.TagMap {
	res := make(model.TagMap, len(tags))
	for _, t := range tags {
		res[t.Key] = t.Value
	}
	return res
}

// ExtractExecutableName returns the leftmost `<name>.exe` token of a command
// line, or the command line itself when there is none.
func ExtractExecutableName(commandLine string) string {
	if m := executableRe.FindString(commandLine); m != "" {
		return m
	}
	return commandLine
}

func tagString(tags model.TagMap, key string) string {
	v, ok := tags[key]
	if !ok {
		return ""
	}
	return v.String()
}

func eventKind(tags model.TagMap) model.EventKind {
	v, ok := tags[model.TagEventID]
	if !ok {
		return model.EventKindUnknown
	}
	return model.ParseEventKind(v.String())
}
