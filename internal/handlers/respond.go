package handlers

import (
	"net/http"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

// fail maps a service error to its HTTP response. Guests get a uniform
// "not authorized" for authorization and existence failures so they cannot
// probe tenants or entities.
func fail(w http.ResponseWriter, p models.Principal, err error) {
	code := apperr.Status(err)
	if !p.Authenticated() {
		switch code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			utils.Error(w, http.StatusUnauthorized, "not authorized")
			return
		}
	}
	utils.Error(w, code, apperr.Message(err))
}
