package rest

import (
	"net/http"

	"github.com/elianzuoni/ml-project2/internal/core/services"
	"github.com/elianzuoni/ml-project2/internal/worker"
)

// JobQueue accepts runs for background execution. *worker.Pool satisfies it.
type JobQueue interface {
	Submit(job worker.Job) error
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc     *services.Orchestrator // Dependency on the Core Service
	queue   JobQueue
	plotDir string
	router  *http.ServeMux // Standard library router
}

// NewHandler initializes the HTTP adapter and sets up routes.
// A nil queue disables run submission.
func NewHandler(svc *services.Orchestrator, queue JobQueue) *Handler {
	h := &Handler{
		svc:    svc,
		queue:  queue,
		router: http.NewServeMux(),
	}

	h.routes()

	return h
}

// WithPlotDir lets runs render plots. Requested plot paths are reduced to
// their base name inside dir.
func (h *Handler) WithPlotDir(dir string) *Handler {
	h.plotDir = dir
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Corpus inspection
	h.router.HandleFunc("GET /corpora/{kind}", h.GetCorpus)
	// Analysis runs
	h.router.HandleFunc("POST /runs", h.CreateRun)
	h.router.HandleFunc("GET /runs", h.ListRuns)
	h.router.HandleFunc("GET /runs/{id}", h.GetRun)
	h.router.HandleFunc("GET /runs/{id}/projection", h.GetProjection)
	h.router.HandleFunc("GET /runs/{id}/plot", h.GetPlot)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "chord embeddings API is live"})
}
