package commonroutes

import (
	"github.com/gorilla/mux"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterCommonRoutes mounts readiness, effective settings, Prometheus
// metrics and build info on app.
func RegisterCommonRoutes(app *mux.Router) {
	app.HandleFunc("/ready", Ready).Methods("GET", "HEAD")
	app.HandleFunc("/config", Config).Methods("GET")
	// gzip is applied by the router middleware
	app.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			DisableCompression: true,
			ErrorLog:           promLogger{},
		}),
	)).Methods("GET")
	app.HandleFunc("/api/status/buildinfo", BuildInfo).Methods("GET")
}

type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	logger.Error(v...)
}
