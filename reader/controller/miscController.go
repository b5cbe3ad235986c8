package controllerv1

import (
	"net/http"

	"github.com/metrico/tracebehavior/reader/config"
)

type MiscController struct {
	Source string
}

// Sources reports the active span source and the ones this build supports.
func (uc *MiscController) Sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"active": uc.Source,
			"supported": []string{config.SourceClickhouse, config.SourceFile,
				config.SourceJaeger, config.SourceElasticsearch},
		},
	}, w)
}
