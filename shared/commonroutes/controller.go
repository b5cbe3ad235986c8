package commonroutes

import (
	"net/http"
	"runtime"

	jsoniter "github.com/json-iterator/go"
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"github.com/metrico/tracebehavior/reader/watchdog"
)

var Version = "0.0.1"
var Branch = "main"

func Ready(w http.ResponseWriter, r *http.Request) {
	err := watchdog.Check()
	if err != nil {
		w.WriteHeader(500)
		logger.Error(err.Error())
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.WriteHeader(200)
	w.Write([]byte("OK"))
}

// Config prints the effective span source settings with credentials left out.
func Config(w http.ResponseWriter, r *http.Request) {
	s := config.Behavior
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(map[string]any{
		"spanSource":    s.SpanSource,
		"traceDir":      s.TraceDir,
		"jaegerUrl":     s.JaegerURL,
		"esUrl":         s.ESURL,
		"esIndex":       s.ESIndex,
		"defaultLimit":  s.DefaultLimit,
		"maxLimit":      s.MaxLimit,
		"sourceRetries": s.SourceRetries,
		"sourceTimeout": s.SourceTimeout.String(),
		"maxBodySize":   s.MaxBodySize.HR(),
	})
}

func BuildInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(map[string]string{
		"version":    Version,
		"branch":     Branch,
		"goVersion":  runtime.Version(),
		"spanSource": config.Behavior.SpanSource,
	})
}
