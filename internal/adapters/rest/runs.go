package rest

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/worker"
)

type createRunResponse struct {
	ID     string           `json:"id"`
	Status domain.RunStatus `json:"status"`
}

// CreateRun handles POST /runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	if h.queue == nil {
		writeError(w, http.StatusNotImplemented, "worker pool not configured")
		return
	}

	// 1. Decode Request
	var req domain.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, "Invalid request body", errCodeInvalidRequest)
		return
	}

	req.PlotPath = h.plotPath(req.PlotPath)

	// 2. Store the run, then hand it to the workers
	run, err := h.svc.CreateRun(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.queue.Submit(worker.Job{RunID: run.ID}); err != nil {
		writeServiceError(w, err)
		return
	}

	// 3. Respond
	w.Header().Set("Location", "/runs/"+run.ID)
	writeJSON(w, http.StatusAccepted, createRunResponse{ID: run.ID, Status: run.Status})
}

// ListRuns handles GET /runs?limit=N
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorWithCode(w, http.StatusBadRequest, "limit must be a non-negative integer", errCodeInvalidRequest)
			return
		}
		limit = n
	}

	runs, err := h.svc.ListRuns(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetProjection handles GET /runs/{id}/projection
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	proj, err := h.svc.GetProjection(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

// GetPlot handles GET /runs/{id}/plot
func (h *Handler) GetPlot(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if run.Request.PlotPath == "" {
		writeErrorWithCode(w, http.StatusNotFound, "run has no plot", errCodeNotFound)
		return
	}
	if run.Status != domain.RunDone {
		writeErrorWithCode(w, http.StatusConflict, "run is "+string(run.Status), errCodeNotReady)
		return
	}
	if _, err := os.Stat(run.Request.PlotPath); err != nil {
		writeErrorWithCode(w, http.StatusNotFound, "plot file missing", errCodeNotFound)
		return
	}
	http.ServeFile(w, r, run.Request.PlotPath)
}

// plotPath confines a requested plot file to the configured directory.
// Without a directory no plot is drawn.
func (h *Handler) plotPath(requested string) string {
	if requested == "" || h.plotDir == "" {
		return ""
	}
	name := filepath.Base(filepath.Clean("/" + requested))
	if name == "/" || name == "." {
		return ""
	}
	return filepath.Join(h.plotDir, name)
}
