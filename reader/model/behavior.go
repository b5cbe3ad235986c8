package model

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Tag names read from the sysmon/sigma enriched spans.
const (
	TagEventID     = "sysmon.event_id"
	TagImage       = "Image"
	TagSigmaAlert  = "sigma.alert"
	TagPID         = "sysmon.pid"
	TagPPID        = "sysmon.ppid"
	TagCommandLine = "CommandLine"
	TagUser        = "User"
	TagEventName   = "EventName"
	TagError       = "error"
)

type EventKind uint8

const (
	EventKindUnknown EventKind = iota
	EventKindProcessStart
	EventKindProcessStop
	EventKindFileCreate
)

// ParseEventKind maps a sysmon event id code to its kind.
func ParseEventKind(code string) EventKind {
	switch code {
	case "1":
		return EventKindProcessStart
	case "5":
		return EventKindProcessStop
	case "11":
		return EventKindFileCreate
	}
	return EventKindUnknown
}

// Code returns the sysmon wire code of the kind.
func (k EventKind) Code() string {
	switch k {
	case EventKindProcessStart:
		return "1"
	case EventKindProcessStop:
		return "5"
	case EventKindFileCreate:
		return "11"
	}
	return "unknown"
}

func (k EventKind) String() string {
	return k.Code()
}

func (k EventKind) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(k.Code())
}

func (k *EventKind) UnmarshalJSON(b []byte) error {
	var code string
	if err := jsoniter.ConfigFastest.Unmarshal(b, &code); err != nil {
		return fmt.Errorf("event kind: %w", err)
	}
	*k = ParseEventKind(code)
	return nil
}

func (k EventKind) MarshalYAML() (any, error) {
	return k.Code(), nil
}

type NormalizedEvent struct {
	Timestamp     int64     `json:"timestamp" yaml:"timestamp"`
	OperationName string    `json:"operationName" yaml:"operationName"`
	EventType     EventKind `json:"eventType" yaml:"eventType"`
	Image         string    `json:"image" yaml:"image"`
	HasAlert      bool      `json:"hasAlert" yaml:"hasAlert"`
	Alert         string    `json:"alert" yaml:"alert"`
	PID           string    `json:"pid" yaml:"pid"`
	ParentPID     string    `json:"parentPid" yaml:"parentPid"`
	CommandLine   string    `json:"commandLine" yaml:"commandLine"`
	MainCommand   string    `json:"mainCommand" yaml:"mainCommand"`
	User          string    `json:"user" yaml:"user"`
	Duration      int64     `json:"duration" yaml:"duration"`
	EventName     string    `json:"eventName" yaml:"eventName"`
}

type TimelineEvent struct {
	NormalizedEvent     `yaml:",inline"`
	BehaviorDescription string `json:"behaviorDescription" yaml:"behaviorDescription"`
}

type ProcessState uint8

const (
	ProcessStopped ProcessState = iota
	ProcessRunning
)

type ProcessNode struct {
	PID         string         `json:"pid" yaml:"pid"`
	ParentPID   string         `json:"parentPid" yaml:"parentPid"`
	Image       string         `json:"image" yaml:"image"`
	CommandLine string         `json:"commandLine" yaml:"commandLine"`
	StartTime   int64          `json:"startTime" yaml:"startTime"`
	HasAlert    bool           `json:"hasAlert" yaml:"hasAlert"`
	Alert       string         `json:"alert" yaml:"alert"`
	Children    []*ProcessNode `json:"children" yaml:"children"`
}

const (
	AlertStatusOK    = "OK"
	AlertStatusError = "ERROR"
)

type AlertRecord struct {
	SpanID        string `json:"spanId" yaml:"spanId"`
	OperationName string `json:"operationName" yaml:"operationName"`
	AlertLabel    string `json:"alertLabel" yaml:"alertLabel"`
	Image         string `json:"image" yaml:"image"`
	CommandLine   string `json:"commandLine" yaml:"commandLine"`
	PID           string `json:"pid" yaml:"pid"`
	EventID       string `json:"eventId" yaml:"eventId"`
	StartTime     int64  `json:"startTime" yaml:"startTime"`
	Duration      int64  `json:"duration" yaml:"duration"`
	Status        string `json:"status" yaml:"status"`
}

type Metrics struct {
	TotalSpans     int      `json:"totalSpans" yaml:"totalSpans"`
	SecurityAlerts int      `json:"securityAlerts" yaml:"securityAlerts"`
	ProcessEvents  int      `json:"processEvents" yaml:"processEvents"`
	FileEvents     int      `json:"fileEvents" yaml:"fileEvents"`
	AlertTypes     int      `json:"alertTypes" yaml:"alertTypes"`
	AlertTypesList []string `json:"alertTypesList" yaml:"alertTypesList"`
}

// TermBucket is one ranked value and the number of spans carrying it.
type TermBucket struct {
	Key      string `json:"key" yaml:"key"`
	DocCount int    `json:"docCount" yaml:"docCount"`
}

type SecurityPatterns struct {
	AlertTypes    []TermBucket `json:"alertTypes" yaml:"alertTypes"`
	ProcessImages []TermBucket `json:"processImages" yaml:"processImages"`
}

// TimeBucket counts the spans starting within one second. Key is the bucket
// start in epoch milliseconds.
type TimeBucket struct {
	Key         int64        `json:"key" yaml:"key"`
	KeyAsString string       `json:"keyAsString" yaml:"keyAsString"`
	DocCount    int          `json:"docCount" yaml:"docCount"`
	EventTypes  []TermBucket `json:"eventTypes" yaml:"eventTypes"`
}
