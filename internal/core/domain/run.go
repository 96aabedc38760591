package domain

import (
	"strings"
	"time"
)

// RunStatus tracks an analysis run through the worker queue.
type RunStatus string

const (
	RunQueued  RunStatus = "queued"
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunFailed  RunStatus = "failed"
)

// AnalysisRequest describes one load → train → reduce → plot pass.
type AnalysisRequest struct {
	Kind           CorpusKind  `json:"kind"`
	Composers      []Composer  `json:"composers"`
	HeldOut        []Composer  `json:"held_out,omitempty"`
	Selector       Selector    `json:"key_mode"`
	DropOneWorders bool        `json:"drop_one_worders"`
	Params         TrainParams `json:"params"`
	Method         string      `json:"method"`
	PlotPath       string      `json:"plot_path,omitempty"`
	ShowLabels     bool        `json:"show_labels,omitempty"`
}

// Normalize fills defaults and validates the request.
func (r *AnalysisRequest) Normalize() error {
	if r.Kind == "" {
		r.Kind = KindChord
	}
	kind, err := ParseCorpusKind(string(r.Kind))
	if err != nil {
		return err
	}
	r.Kind = kind
	sel, err := ParseSelector(string(r.Selector))
	if err != nil {
		return err
	}
	r.Selector = sel
	if len(r.Composers) == 0 {
		return ErrNoComposers
	}
	for _, list := range [][]Composer{r.Composers, r.HeldOut} {
		for _, c := range list {
			if err := c.Validate(); err != nil {
				return err
			}
		}
	}
	if r.Method == "" {
		r.Method = "pca"
	}
	def := DefaultTrainParams()
	if r.Params.MinCount <= 0 {
		r.Params.MinCount = def.MinCount
	}
	if r.Params.Size <= 0 {
		r.Params.Size = def.Size
	}
	if r.Params.Window <= 0 {
		r.Params.Window = def.Window
	}
	if r.Params.Epochs <= 0 {
		r.Params.Epochs = def.Epochs
	}
	if r.Params.Negative <= 0 {
		r.Params.Negative = def.Negative
	}
	if r.Params.Seed == 0 {
		r.Params.Seed = def.Seed
	}
	return nil
}

// PlotTitle names the composers when there are at most three of them.
func PlotTitle(composers []Composer) string {
	if len(composers) == 0 || len(composers) > 3 {
		return "Chords in the embedding space for all composers"
	}
	names := make([]string, len(composers))
	for i, c := range composers {
		names[i] = c.Name()
	}
	return "Chords in the embedding space for " + strings.Join(names, ", ")
}

// AnalysisRun is the persisted record of an analysis.
type AnalysisRun struct {
	ID             string          `json:"id"`
	Request        AnalysisRequest `json:"request"`
	TrainComposers []Composer      `json:"train_composers"`
	TestComposers  []Composer      `json:"test_composers"`
	TrainSentences int             `json:"train_sentences"`
	TestSentences  int             `json:"test_sentences"`
	SkippedLines   int             `json:"skipped_lines"`
	Status         RunStatus       `json:"status"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
