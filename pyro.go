package main

import (
	"os"

	"github.com/grafana/pyroscope-go"
	behaviorconfig "github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/utils/logger"
)

func initPyro() {
	serverAddress := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if serverAddress == "" {
		return
	}

	applicationName := os.Getenv("PYROSCOPE_APPLICATION_NAME")
	if applicationName == "" {
		applicationName = behaviorconfig.NAME_APPLICATION
	}

	config := pyroscope.Config{
		ApplicationName: applicationName,
		ServerAddress:   serverAddress,
		Logger:          logger.Logger,
		Tags:            map[string]string{"span_source": behaviorconfig.Behavior.SpanSource},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	}

	_, err := pyroscope.Start(config)
	if err != nil {
		logger.Error("Failed to start Pyroscope: ", err)
		panic(err)
	}
	logger.Info("Pyroscope profiling started")
}
