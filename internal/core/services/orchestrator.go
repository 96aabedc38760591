package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

// ReducerFactory resolves a reduction method name such as "pca".
type ReducerFactory func(method string) (ports.Reducer, error)

// Result is the outcome of one analysis pass.
type Result struct {
	Split      Split
	Embedding  domain.Embedding
	Projection domain.Projection
}

// ModeEmbeddings holds the three models of TrainByMode.
type ModeEmbeddings struct {
	All   domain.Embedding
	Major domain.Embedding
	Minor domain.Embedding
}

// Orchestrator coordinates corpus loading, training, reduction, plotting
// and persistence.
type Orchestrator struct {
	loader   *Loader
	trainer  ports.EmbeddingTrainer
	reducers ReducerFactory
	plotter  ports.Plotter
	repo     ports.RunRepository
	now      func() time.Time
}

// NewOrchestrator constructs an Orchestrator. plotter and repo may be nil:
// plotting and persistence are then skipped.
func NewOrchestrator(loader *Loader, trainer ports.EmbeddingTrainer, reducers ReducerFactory, plotter ports.Plotter, repo ports.RunRepository) *Orchestrator {
	return &Orchestrator{
		loader:   loader,
		trainer:  trainer,
		reducers: reducers,
		plotter:  plotter,
		repo:     repo,
		now:      time.Now,
	}
}

// LoadCorpus loads the corpus of the given composers without training.
func (o *Orchestrator) LoadCorpus(ctx context.Context, kind domain.CorpusKind, composers []domain.Composer, sel domain.Selector, dropOneWorders bool) (LoadResult, error) {
	if len(composers) == 0 {
		return LoadResult{}, fmt.Errorf("service: %w", domain.ErrNoComposers)
	}
	return o.loader.Load(ctx, kind, composers, sel, dropOneWorders)
}

// Analyze runs load → train → reduce → plot for req without persisting.
func (o *Orchestrator) Analyze(ctx context.Context, req domain.AnalysisRequest) (Result, error) {
	if err := req.Normalize(); err != nil {
		return Result{}, fmt.Errorf("service: invalid request: %w", err)
	}

	// 1. Load and partition
	split, err := o.loader.Partition(ctx, PartitionRequest{
		Kind:           req.Kind,
		Composers:      req.Composers,
		HeldOut:        req.HeldOut,
		Selector:       req.Selector,
		DropOneWorders: req.DropOneWorders,
	})
	if err != nil {
		return Result{}, err
	}
	if split.Empty() {
		log.Printf("WARN service: empty partition (train=%d, test=%d sentences)", len(split.Train.Corpus), len(split.Test.Corpus))
	}
	if len(split.Train.Corpus) == 0 {
		return Result{Split: split}, fmt.Errorf("service: %w: no training sentences", domain.ErrEmptyCorpus)
	}

	// 2. Train on the training split
	emb, err := o.trainer.Train(ctx, split.Train.Corpus, req.Params)
	if err != nil {
		return Result{Split: split}, fmt.Errorf("service: failed to train embedding: %w", err)
	}

	// 3. Reduce to two dimensions
	reducer, err := o.reducers(req.Method)
	if err != nil {
		return Result{Split: split}, fmt.Errorf("service: %w", err)
	}
	proj, err := reducer.Reduce(ctx, emb, 2)
	if err != nil {
		return Result{Split: split}, fmt.Errorf("service: failed to reduce embedding: %w", err)
	}

	// 4. Plot
	if o.plotter != nil && req.PlotPath != "" {
		style := ports.PlotStyle{
			Title:         domain.PlotTitle(split.TrainComposers),
			Method:        req.Method,
			Path:          req.PlotPath,
			ShowLabels:    req.ShowLabels,
			RemoveKeyMode: true,
		}
		if err := o.plotter.Plot(ctx, proj, style); err != nil {
			return Result{Split: split}, fmt.Errorf("service: failed to plot projection: %w", err)
		}
	}

	return Result{Split: split, Embedding: emb, Projection: proj}, nil
}

// TrainByMode trains one embedding on the unaugmented sentences of both
// modes, one on MAJOR sentences only and one on MINOR sentences only.
func (o *Orchestrator) TrainByMode(ctx context.Context, composers []domain.Composer, params domain.TrainParams) (ModeEmbeddings, error) {
	corpora, err := o.loader.LoadByMode(ctx, composers)
	if err != nil {
		return ModeEmbeddings{}, err
	}

	var out ModeEmbeddings
	for _, job := range []struct {
		name   string
		corpus domain.Corpus
		dst    *domain.Embedding
	}{
		{"all", corpora.All, &out.All},
		{"major", corpora.Major, &out.Major},
		{"minor", corpora.Minor, &out.Minor},
	} {
		if len(job.corpus) == 0 {
			log.Printf("WARN service: no %s sentences to train on", job.name)
			continue
		}
		emb, err := o.trainer.Train(ctx, job.corpus, params)
		if err != nil {
			return ModeEmbeddings{}, fmt.Errorf("service: failed to train %s embedding: %w", job.name, err)
		}
		*job.dst = emb
	}
	return out, nil
}

// CreateRun validates req and stores it as a queued run.
func (o *Orchestrator) CreateRun(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisRun, error) {
	if err := req.Normalize(); err != nil {
		return domain.AnalysisRun{}, fmt.Errorf("service: invalid request: %w", err)
	}
	if _, _, err := SplitComposers(req.Composers, req.HeldOut); err != nil {
		return domain.AnalysisRun{}, err
	}
	if o.repo == nil {
		return domain.AnalysisRun{}, errors.New("service: no run repository configured")
	}

	run := domain.AnalysisRun{
		ID:        uuid.New().String(),
		Request:   req,
		Status:    domain.RunQueued,
		CreatedAt: o.now().UTC(),
	}
	if err := o.repo.SaveRun(ctx, run); err != nil {
		return domain.AnalysisRun{}, fmt.Errorf("service: failed to save run: %w", err)
	}
	return run, nil
}

// Execute runs a queued analysis and records its outcome.
func (o *Orchestrator) Execute(ctx context.Context, runID string) error {
	_, err := o.execute(ctx, runID)
	return err
}

// Record creates a run for req and executes it synchronously, returning
// the stored run along with the trained embedding.
func (o *Orchestrator) Record(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisRun, Result, error) {
	run, err := o.CreateRun(ctx, req)
	if err != nil {
		return domain.AnalysisRun{}, Result{}, err
	}
	res, err := o.execute(ctx, run.ID)
	if stored, getErr := o.repo.GetRun(ctx, run.ID); getErr == nil {
		run = stored
	}
	return run, res, err
}

func (o *Orchestrator) execute(ctx context.Context, runID string) (Result, error) {
	run, err := o.repo.GetRun(ctx, runID)
	if err != nil {
		return Result{}, fmt.Errorf("service: failed to load run: %w", err)
	}
	if err := o.repo.UpdateRunStatus(ctx, runID, domain.RunRunning, ""); err != nil {
		return Result{}, fmt.Errorf("service: failed to mark run running: %w", err)
	}

	res, err := o.Analyze(ctx, run.Request)
	run.TrainComposers = res.Split.TrainComposers
	run.TestComposers = res.Split.TestComposers
	run.TrainSentences = len(res.Split.Train.Corpus)
	run.TestSentences = len(res.Split.Test.Corpus)
	run.SkippedLines = res.Split.Skipped()
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
		if saveErr := o.repo.SaveRun(ctx, run); saveErr != nil {
			log.Printf("WARN service: failed to record failure of run %s: %v", runID, saveErr)
		}
		return res, err
	}

	if err := o.repo.SaveProjection(ctx, runID, res.Projection); err != nil {
		return res, fmt.Errorf("service: failed to save projection: %w", err)
	}
	run.Status = domain.RunDone
	if err := o.repo.SaveRun(ctx, run); err != nil {
		return res, fmt.Errorf("service: failed to save run: %w", err)
	}
	return res, nil
}

// MarkFailed records a run that could not be executed.
func (o *Orchestrator) MarkFailed(ctx context.Context, runID string, reason string) error {
	return o.repo.UpdateRunStatus(ctx, runID, domain.RunFailed, reason)
}

func (o *Orchestrator) GetRun(ctx context.Context, id string) (domain.AnalysisRun, error) {
	if id == "" {
		return domain.AnalysisRun{}, errors.New("service: run id cannot be empty")
	}
	return o.repo.GetRun(ctx, id)
}

func (o *Orchestrator) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	return o.repo.ListRuns(ctx, limit)
}

func (o *Orchestrator) GetProjection(ctx context.Context, runID string) (domain.Projection, error) {
	if runID == "" {
		return domain.Projection{}, errors.New("service: run id cannot be empty")
	}
	return o.repo.GetProjection(ctx, runID)
}
