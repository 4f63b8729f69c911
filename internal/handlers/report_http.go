package handlers

import (
	"net/http"

	"github.com/editorjakupi/testning-av-crmsystem/internal/middleware"
	"github.com/editorjakupi/testning-av-crmsystem/internal/service"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

type ReportsHTTP struct {
	issues *service.IssueService
}

func NewReportsHTTP(issues *service.IssueService) *ReportsHTTP {
	return &ReportsHTTP{issues: issues}
}

// GET /api/reports/summary returns per-tenant issue counts by state.
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFrom(r.Context())
		summary, err := h.issues.Summarize(r.Context(), p)
		if err != nil {
			fail(w, p, err)
			return
		}
		utils.JSON(w, http.StatusOK, summary)
	}
}
