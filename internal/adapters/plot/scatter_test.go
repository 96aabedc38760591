package plot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/colornames"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

func projection() domain.Projection {
	return domain.NewProjection("pca",
		[]domain.Token{"MAJOR;I", "MAJOR;bVII:MAJ", "MINOR;V:MIN", "MINOR;#IV:DIM", "C"},
		[][]float64{{0, 0}, {1, 0.5}, {-1, 2}, {0.3, -0.7}, {2, 2}},
	)
}

func TestScatter_Plot(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		style ports.PlotStyle
	}{
		{
			name:  "png with labels",
			file:  "chords.png",
			style: ports.PlotStyle{Title: "Chords in the embedding space for Bach", Method: "pca", ShowLabels: true, RemoveKeyMode: true},
		},
		{
			name:  "svg in nested directory",
			file:  filepath.Join("nested", "dir", "chords.svg"),
			style: ports.PlotStyle{Method: "tsne"},
		},
		{
			name: "custom markers and colours",
			file: "custom.png",
			style: ports.PlotStyle{
				Markers: map[domain.KeyMode]string{domain.ModeMajor: "plus", domain.ModeMinor: "cross", domain.ModeUnspecified: "ring"},
				Colours: map[string]string{"I": "orange"},
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.style.Path = filepath.Join(t.TempDir(), tc.file)
			if err := NewScatter().Plot(context.Background(), projection(), tc.style); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			info, err := os.Stat(tc.style.Path)
			if err != nil {
				t.Fatalf("plot not written: %v", err)
			}
			if info.Size() == 0 {
				t.Fatalf("plot file is empty")
			}
		})
	}
}

func TestScatter_PlotErrors(t *testing.T) {
	dir := t.TempDir()
	s := NewScatter()

	err := s.Plot(context.Background(), projection(), ports.PlotStyle{
		Path:    filepath.Join(dir, "bad.png"),
		Markers: map[domain.KeyMode]string{domain.ModeMajor: "star"},
	})
	if !errors.Is(err, ErrUnknownMarker) {
		t.Fatalf("expected ErrUnknownMarker, got %v", err)
	}

	if err := s.Plot(context.Background(), projection(), ports.PlotStyle{}); err == nil {
		t.Fatalf("expected error for empty path")
	}

	if err := s.Plot(context.Background(), projection(), ports.PlotStyle{Path: filepath.Join(dir, "x.bmp")}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Plot(ctx, projection(), ports.PlotStyle{Path: filepath.Join(dir, "c.png")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPointColour(t *testing.T) {
	tests := []struct {
		tok  domain.Token
		want interface{}
	}{
		{"MAJOR;I", colornames.Blue},
		{"MAJOR;bVII:MAJ", colornames.Pink},
		{"MINOR;V:MIN", colornames.Red},
		{"G", fallbackColour},
	}
	for _, tc := range tests {
		if got := pointColour(tc.tok, nil); got != tc.want {
			t.Fatalf("pointColour(%q) = %v, want %v", tc.tok, got, tc.want)
		}
	}
}

func TestPointLabels_RemovesMode(t *testing.T) {
	labels, err := pointLabels(projection().Points, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels.Labels[1] != "bVII:MAJ" {
		t.Fatalf("label: got %q", labels.Labels[1])
	}
	kept, err := pointLabels(projection().Points, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kept.Labels[1] != "MAJOR;bVII:MAJ" {
		t.Fatalf("label: got %q", kept.Labels[1])
	}
}
