package api

import (
	"context"
	"net/http"

	"github.com/okian/starboard/internal/adapters/render"
)

// ReportDependencies exposes the published render description.
type ReportDependencies interface {
	Report(ctx context.Context) (render.Report, error)
}

// ReportHandler handles report requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /report and GET /report?panel=<id>.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.Report(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	id := r.URL.Query().Get("panel")
	if id == "" {
		writeJSON(w, http.StatusOK, report)
		return
	}
	for _, p := range report.Panels {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrUnknownPanel))
}
