package model

type TimelineResponse struct {
	Timeline []TimelineEvent `json:"timeline" yaml:"timeline"`
}

type ProcessTreeResponse struct {
	Processes []*ProcessNode `json:"processes" yaml:"processes"`
}

type AlertsResponse struct {
	Alerts  []AlertRecord `json:"alerts" yaml:"alerts"`
	Total   int           `json:"total" yaml:"total"`
	TraceID string        `json:"traceId" yaml:"traceId"`
}

type MetricsResponse struct {
	Metrics `yaml:",inline"`
	TraceID string `json:"traceId" yaml:"traceId"`
}

// BehaviorReport bundles the four views of one trace.
type BehaviorReport struct {
	TraceID     string               `json:"traceId" yaml:"traceId"`
	Timeline    *TimelineResponse    `json:"timeline" yaml:"timeline"`
	ProcessTree *ProcessTreeResponse `json:"processTree" yaml:"processTree"`
	Alerts      *AlertsResponse      `json:"securityAlerts" yaml:"securityAlerts"`
	Metrics     *MetricsResponse     `json:"metrics" yaml:"metrics"`
}

type ProcessEventsResponse struct {
	TraceID string            `json:"traceId" yaml:"traceId"`
	PID     string            `json:"pid" yaml:"pid"`
	Events  []NormalizedEvent `json:"events" yaml:"events"`
	Total   int               `json:"total" yaml:"total"`
}

type SecurityPatternsResponse struct {
	SecurityPatterns `yaml:",inline"`
	TraceID          string `json:"traceId" yaml:"traceId"`
}

type EventHistogramResponse struct {
	TraceID  string       `json:"traceId" yaml:"traceId"`
	Interval string       `json:"interval" yaml:"interval"`
	Buckets  []TimeBucket `json:"buckets" yaml:"buckets"`
}
