package apirouterv1

import (
	"github.com/gorilla/mux"
	"github.com/metrico/tracebehavior/reader/config"
	controllerv1 "github.com/metrico/tracebehavior/reader/controller"
	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/service"
)

func RouteBehavior(app *mux.Router, source model.ISpanSource, settings config.BehaviorSettings) {
	behaviorSvc := service.NewBehaviorService(model.ServiceData{
		Source: source,
	})
	ctrl := &controllerv1.BehaviorController{
		Controller:   controllerv1.Controller{},
		Service:      behaviorSvc,
		DefaultLimit: settings.DefaultLimit,
		MaxBodySize:  settings.MaxBodySize,
	}
	app.HandleFunc("/api/traces/{traceId}/timeline", ctrl.Timeline).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/process-tree", ctrl.ProcessTree).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/security-alerts", ctrl.SecurityAlerts).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/metrics", ctrl.Metrics).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/report", ctrl.Report).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/processes/{pid}/events", ctrl.ProcessEvents).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/security-patterns", ctrl.SecurityPatterns).Methods("GET")
	app.HandleFunc("/api/traces/{traceId}/event-histogram", ctrl.EventHistogram).Methods("GET")
	app.HandleFunc("/api/analyze", ctrl.Analyze).Methods("POST")
}
