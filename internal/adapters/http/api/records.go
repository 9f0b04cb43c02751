package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/samber/lo"
)

// RecordsDependencies exposes the published completion records.
type RecordsDependencies interface {
	Records(ctx context.Context) ([]model.CompletionRecord, error)
}

// RecordsHandler handles record listing requests.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleGetRecords handles GET /records with optional name and day filters.
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	day := 0
	if s := q.Get("day"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil || d < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		day = d
	}
	records, err := h.deps.Records(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	name := q.Get("name")
	filtered := lo.Filter(records, func(rec model.CompletionRecord, _ int) bool {
		return (name == "" || rec.Name == name) && (day == 0 || rec.Day == day)
	})
	writeJSON(w, http.StatusOK, filtered)
}
