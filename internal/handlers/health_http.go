package handlers

import (
	"net/http"

	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, healthResponse{Status: "ok", Service: "crm-api"})
	}
}
