package reader

import (
	"runtime"

	"github.com/gorilla/mux"
	clconfig "github.com/metrico/cloki-config"
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/model"
	apirouterv1 "github.com/metrico/tracebehavior/reader/router"
	"github.com/metrico/tracebehavior/reader/spansource"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"github.com/metrico/tracebehavior/reader/watchdog"
)

// Init wires the span source, the watchdog and the behaviour routes into app.
// Middlewares and serving are left to the caller.
func Init(cnf *clconfig.ClokiConfig, settings config.BehaviorSettings, app *mux.Router) {
	config.Cloki = cnf
	config.Behavior = settings

	//Set to max cpu if the value is equals 0
	if config.Cloki.Setting.SYSTEM_SETTINGS.CPUMaxProcs == 0 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	} else {
		runtime.GOMAXPROCS(config.Cloki.Setting.SYSTEM_SETTINGS.CPUMaxProcs)
	}

	logger.InitLogger()

	performV1APIRouting(app)
}

func performV1APIRouting(acc *mux.Router) {
	source, err := spansource.New(config.Behavior)
	if err != nil {
		logger.Error("span source: ", err)
		panic(err)
	}
	watchdog.Init(&model.ServiceData{Source: source})

	apirouterv1.RouteBehavior(acc, source, config.Behavior)
	apirouterv1.RouteMiscApis(acc, source.Name())
}
