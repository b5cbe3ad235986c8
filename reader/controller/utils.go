package controllerv1

import (
	"net/http"
	"runtime/debug"

	"github.com/metrico/tracebehavior/reader/utils/logger"
)

func tamePanic(w http.ResponseWriter, r *http.Request) {
	if err := recover(); err != nil {
		logger.Error("panic:", err, " stack:", string(debug.Stack()))
		logger.Error("query: ", r.URL.String())
		PromError(http.StatusInternalServerError, "Internal Server Error", w)
	}
}
