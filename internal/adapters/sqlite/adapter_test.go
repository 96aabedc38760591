package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func sampleRun(id string, created time.Time) domain.AnalysisRun {
	req := domain.AnalysisRequest{
		Kind:      domain.KindChord,
		Composers: []domain.Composer{"Bach", "Chopin", "Ravel"},
		HeldOut:   []domain.Composer{"Ravel"},
		Selector:  domain.SelectBoth,
		Params:    domain.DefaultTrainParams(),
		Method:    "pca",
		PlotPath:  "plots/run.png",
	}
	return domain.AnalysisRun{
		ID:             id,
		Request:        req,
		TrainComposers: []domain.Composer{"Bach", "Chopin"},
		TestComposers:  []domain.Composer{"Ravel"},
		Status:         domain.RunQueued,
		CreatedAt:      created,
	}
}

func TestAdapter_GetRun(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, a *Adapter) string
		wantErr error
		check   func(t *testing.T, got domain.AnalysisRun)
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "round trips request and composers",
			setup: func(t *testing.T, a *Adapter) string {
				run := sampleRun("run-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
				if err := a.SaveRun(context.Background(), run); err != nil {
					t.Fatalf("save run: %v", err)
				}
				return run.ID
			},
			check: func(t *testing.T, got domain.AnalysisRun) {
				want := sampleRun("run-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
				if !reflect.DeepEqual(got.Request, want.Request) {
					t.Fatalf("request: got %+v, want %+v", got.Request, want.Request)
				}
				if !reflect.DeepEqual(got.TrainComposers, want.TrainComposers) || !reflect.DeepEqual(got.TestComposers, want.TestComposers) {
					t.Fatalf("composers: got %v / %v", got.TrainComposers, got.TestComposers)
				}
				if got.Status != domain.RunQueued || got.Error != "" {
					t.Fatalf("status: got %q %q", got.Status, got.Error)
				}
				if !got.CreatedAt.Equal(want.CreatedAt) {
					t.Fatalf("created at: got %v, want %v", got.CreatedAt, want.CreatedAt)
				}
			},
		},
		{
			name: "upsert overwrites counts and status",
			setup: func(t *testing.T, a *Adapter) string {
				run := sampleRun("run-2", time.Now())
				if err := a.SaveRun(context.Background(), run); err != nil {
					t.Fatalf("save run: %v", err)
				}
				run.Status = domain.RunFailed
				run.Error = "reduce: not enough tokens"
				run.TrainSentences = 12
				run.TestSentences = 3
				run.SkippedLines = 2
				if err := a.SaveRun(context.Background(), run); err != nil {
					t.Fatalf("save run again: %v", err)
				}
				return run.ID
			},
			check: func(t *testing.T, got domain.AnalysisRun) {
				if got.Status != domain.RunFailed || got.Error == "" {
					t.Fatalf("status: got %q %q", got.Status, got.Error)
				}
				if got.TrainSentences != 12 || got.TestSentences != 3 || got.SkippedLines != 2 {
					t.Fatalf("counts: %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)
			id := tt.setup(t, a)
			got, err := a.GetRun(context.Background(), id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestAdapter_ListRuns(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := a.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := a.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", runs)
	}

	all, err := a.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestAdapter_UpdateRunStatus(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	if err := a.SaveRun(ctx, sampleRun("run-1", time.Now())); err != nil {
		t.Fatalf("save run: %v", err)
	}

	if err := a.UpdateRunStatus(ctx, "run-1", domain.RunRunning, ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := a.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != domain.RunRunning {
		t.Fatalf("status: got %q", got.Status)
	}

	if err := a.UpdateRunStatus(ctx, "missing", domain.RunDone, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdapter_Projection(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	if err := a.SaveRun(ctx, sampleRun("run-1", time.Now())); err != nil {
		t.Fatalf("save run: %v", err)
	}

	if _, err := a.GetProjection(ctx, "run-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	first := domain.NewProjection("tsne",
		[]domain.Token{"MAJOR;I", "MINOR;V", "MAJOR;bVII:MAJ"},
		[][]float64{{0.5, -1}, {2, 3}, {-4.25, 0}},
	)
	if err := a.SaveProjection(ctx, "run-1", first); err != nil {
		t.Fatalf("save projection: %v", err)
	}
	got, err := a.GetProjection(ctx, "run-1")
	if err != nil {
		t.Fatalf("get projection: %v", err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("got %+v, want %+v", got, first)
	}

	second := domain.NewProjection("pca", []domain.Token{"I", "V"}, [][]float64{{1, 1}, {2, 2}})
	if err := a.SaveProjection(ctx, "run-1", second); err != nil {
		t.Fatalf("replace projection: %v", err)
	}
	got, err = a.GetProjection(ctx, "run-1")
	if err != nil {
		t.Fatalf("get projection: %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("replacement: got %+v, want %+v", got, second)
	}
}

func TestAdapter_MigrateIsIdempotent(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.migrate(); err != nil {
		t.Fatalf("second migration: %v", err)
	}
}
