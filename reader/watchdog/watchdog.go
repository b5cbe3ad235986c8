package watchdog

import (
	"fmt"
	"sync"
	"time"

	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/utils/logger"
)

var (
	svc                 *model.ServiceData
	mtx                 sync.Mutex
	retries             = 0
	lastSuccessfulCheck = time.Now()
)

// Init pings the span source every 5 seconds in the background.
func Init(_svc *model.ServiceData) {
	svc = _svc
	ticker := time.NewTicker(time.Second * 5)
	go func() {
		for range ticker.C {
			report(svc.Ping())
		}
	}()
}

func report(err error) {
	mtx.Lock()
	defer mtx.Unlock()
	if err == nil {
		retries = 0
		lastSuccessfulCheck = time.Now()
		logger.Debug("---- WATCHDOG CHECK OK ----")
		return
	}
	retries++
	logger.Info("---- WATCHDOG REPORT ----")
	logger.Error("span source ", svc.Source.Name(), " not responding ", retries*5, " seconds: ", err)
}

// Check fails once the span source has not answered a ping for 30 seconds.
func Check() error {
	mtx.Lock()
	defer mtx.Unlock()
	if lastSuccessfulCheck.Add(time.Second * 30).After(time.Now()) {
		return nil
	}
	return fmt.Errorf("span source not responding since %v", lastSuccessfulCheck)
}
