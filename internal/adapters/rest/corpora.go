package rest

import (
	"net/http"
	"strconv"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// GetCorpus handles GET /corpora/{kind}?composers=A,B&mode=both&drop_one_worders=true
func (h *Handler) GetCorpus(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseCorpusKind(r.PathValue("kind"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	q := r.URL.Query()
	composers := domain.ParseComposers(q.Get("composers"))
	if len(composers) == 0 {
		writeServiceError(w, domain.ErrNoComposers)
		return
	}
	sel, err := domain.ParseSelector(q.Get("mode"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	drop := false
	if raw := q.Get("drop_one_worders"); raw != "" {
		drop, err = strconv.ParseBool(raw)
		if err != nil {
			writeErrorWithCode(w, http.StatusBadRequest, "drop_one_worders must be a boolean", errCodeInvalidRequest)
			return
		}
	}

	res, err := h.svc.LoadCorpus(r.Context(), kind, composers, sel, drop)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
