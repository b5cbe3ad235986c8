package model

import (
	"strconv"
)

type TagValueKind uint8

const (
	TagString TagValueKind = iota
	TagInt64
	TagFloat64
	TagBool
)

// TagValue is a span tag value as it arrived from the span source. Values keep
// their original kind so that checks like `error == true` do not match the
// string "true".
type TagValue struct {
	Kind  TagValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringValue(s string) TagValue {
	return TagValue{Kind: TagString, Str: s}
}

func IntValue(i int64) TagValue {
	return TagValue{Kind: TagInt64, Int: i}
}

func FloatValue(f float64) TagValue {
	return TagValue{Kind: TagFloat64, Float: f}
}

func BoolValue(b bool) TagValue {
	return TagValue{Kind: TagBool, Bool: b}
}

func (v TagValue) IsString() bool {
	return v.Kind == TagString
}

// IsTrue reports whether the value is the boolean true.
func (v TagValue) IsTrue() bool {
	return v.Kind == TagBool && v.Bool
}

func (v TagValue) String() string {
	switch v.Kind {
	case TagInt64:
		return strconv.FormatInt(v.Int, 10)
	case TagFloat64:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TagBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

type Tag struct {
	Key   string
	Value TagValue
}

type TagMap map[string]TagValue

type Span struct {
	SpanID        string
	OperationName string
	StartTime     int64
	Duration      int64
	Tags          []Tag
}

type Trace struct {
	TraceID string
	Spans   []Span
}
