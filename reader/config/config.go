package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	clconfig "github.com/metrico/cloki-config"
)

const NAME_APPLICATION = "tracebehavior"

var Cloki *clconfig.ClokiConfig

var Behavior = DefaultBehaviorSettings()

const (
	SourceClickhouse    = "clickhouse"
	SourceFile          = "file"
	SourceJaeger        = "jaeger"
	SourceElasticsearch = "elasticsearch"
)

// BehaviorSettings are the span source and request knobs that cloki-config
// has no section for.
type BehaviorSettings struct {
	SpanSource     string
	TraceDir       string
	JaegerURL      string
	ESURL          string
	ESIndex        string
	ESUser         string
	ESPassword     string
	DefaultLimit   int
	MaxLimit       int
	SourceRetries  uint
	SourceTimeout  time.Duration
	MaxBodySize    datasize.ByteSize
	BasicAuthLogin string
	BasicAuthPass  string
}

func DefaultBehaviorSettings() BehaviorSettings {
	return BehaviorSettings{
		SpanSource:    SourceClickhouse,
		TraceDir:      "traces",
		JaegerURL:     "http://localhost:16686",
		ESURL:         "https://localhost:9200",
		ESIndex:       "trace",
		DefaultLimit:  1000,
		MaxLimit:      10000,
		SourceRetries: 3,
		SourceTimeout: 30 * time.Second,
		MaxBodySize:   16 * datasize.MB,
	}
}

// PortBehaviorEnv fills the settings from BEHAVIOR_* environment variables.
func PortBehaviorEnv(s *BehaviorSettings) error {
	if v := os.Getenv("BEHAVIOR_SPAN_SOURCE"); v != "" {
		v = strings.ToLower(v)
		switch v {
		case SourceClickhouse, SourceFile, SourceJaeger, SourceElasticsearch:
			s.SpanSource = v
		default:
			return fmt.Errorf("BEHAVIOR_SPAN_SOURCE must be one of [%s, %s, %s, %s], got %q",
				SourceClickhouse, SourceFile, SourceJaeger, SourceElasticsearch, v)
		}
	}
	for env, dst := range map[string]*string{
		"BEHAVIOR_TRACE_DIR":   &s.TraceDir,
		"BEHAVIOR_JAEGER_URL":  &s.JaegerURL,
		"BEHAVIOR_ES_URL":      &s.ESURL,
		"BEHAVIOR_ES_INDEX":    &s.ESIndex,
		"BEHAVIOR_ES_USER":     &s.ESUser,
		"BEHAVIOR_ES_PASSWORD": &s.ESPassword,
		"BEHAVIOR_LOGIN":       &s.BasicAuthLogin,
		"BEHAVIOR_PASSWORD":    &s.BasicAuthPass,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("BEHAVIOR_DEFAULT_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > s.MaxLimit {
			return fmt.Errorf("invalid BEHAVIOR_DEFAULT_LIMIT value `%s`: must be in 1..%d", v, s.MaxLimit)
		}
		s.DefaultLimit = limit
	}
	if v := os.Getenv("BEHAVIOR_SOURCE_RETRIES"); v != "" {
		retries, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid BEHAVIOR_SOURCE_RETRIES value: %w", err)
		}
		s.SourceRetries = uint(retries)
	}
	if v := os.Getenv("BEHAVIOR_SOURCE_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BEHAVIOR_SOURCE_TIMEOUT value: %w", err)
		}
		s.SourceTimeout = timeout
	}
	if v := os.Getenv("BEHAVIOR_MAX_BODY_SIZE"); v != "" {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid BEHAVIOR_MAX_BODY_SIZE value `%s`: %w", v, err)
		}
		s.MaxBodySize = size
	}
	return nil
}
