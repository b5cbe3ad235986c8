package apirouterv1

import (
	"github.com/gorilla/mux"
	controllerv1 "github.com/metrico/tracebehavior/reader/controller"
)

func RouteMiscApis(app *mux.Router, source string) {
	m := &controllerv1.MiscController{
		Source: source,
	}
	app.HandleFunc("/api/sources", m.Sources).Methods("GET")
}
