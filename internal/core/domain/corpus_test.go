package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestComposer_FileName(t *testing.T) {
	tests := []struct {
		in       Composer
		wantFile string
		wantName string
	}{
		{"Bach", "Bach.csv", "Bach"},
		{"Bach.csv", "Bach.csv", "Bach"},
		{" Schütz ", "Schütz.csv", "Schütz"},
	}
	for _, tc := range tests {
		if got := tc.in.FileName(); got != tc.wantFile {
			t.Fatalf("FileName(%q) = %q, want %q", tc.in, got, tc.wantFile)
		}
		if got := tc.in.Name(); got != tc.wantName {
			t.Fatalf("Name(%q) = %q, want %q", tc.in, got, tc.wantName)
		}
	}
}

func TestParseComposers(t *testing.T) {
	got := ParseComposers(" Bach, Chopin.csv,,Ravel ")
	want := []Composer{"Bach", "Chopin.csv", "Ravel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if ParseComposers("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestComposer_Validate(t *testing.T) {
	tests := []struct {
		composer Composer
		wantErr  bool
	}{
		{"Bach", false},
		{"Chopin.csv", false},
		{"C.P.E. Bach", false},
		{"", true},
		{" ", true},
		{"..", true},
		{".", true},
		{"../../secret", true},
		{"key/Bach", true},
		{"/etc/passwd", true},
		{`..\secret`, true},
		{"C:secret", true},
	}
	for _, tc := range tests {
		err := tc.composer.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("Validate(%q): got %v, wantErr %v", tc.composer, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidComposer) {
			t.Fatalf("Validate(%q): expected ErrInvalidComposer, got %v", tc.composer, err)
		}
	}
}

func TestCorpus_Vocabulary(t *testing.T) {
	c := Corpus{
		{"I", "V", "I"},
		{"IV", "V"},
		{"vi"},
	}
	if got, want := c.Vocabulary(1), []Token{"I", "V", "IV", "vi"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("min count 1: got %v, want %v", got, want)
	}
	if got, want := c.Vocabulary(2), []Token{"I", "V"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("min count 2: got %v, want %v", got, want)
	}
	if c.Counts()["I"] != 2 {
		t.Fatalf("count of I: got %d", c.Counts()["I"])
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{"both", SelectBoth, false},
		{"", SelectBoth, false},
		{"MAJOR", SelectMajor, false},
		{"Minor", SelectMinor, false},
		{"dorian", "", true},
	}
	for _, tc := range tests {
		got, err := ParseSelector(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidSelector) {
				t.Fatalf("ParseSelector(%q): expected ErrInvalidSelector, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseSelector(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestSelector_Matches(t *testing.T) {
	if !SelectMajor.Matches(ModeMajor) || SelectMajor.Matches(ModeMinor) {
		t.Fatalf("major selector mismatch")
	}
	if !SelectMinor.Matches(ModeMinor) || SelectMinor.Matches(ModeUnspecified) {
		t.Fatalf("minor selector mismatch")
	}
	if !SelectBoth.Matches(ModeUnspecified) {
		t.Fatalf("both selector must keep every mode")
	}
}

func TestParseKeyMode(t *testing.T) {
	for in, want := range map[string]KeyMode{"major": ModeMajor, " MINOR ": ModeMinor, "unspecified": ModeUnspecified} {
		got, err := ParseKeyMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseKeyMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKeyMode("lydian"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestPlotTitle(t *testing.T) {
	if got := PlotTitle([]Composer{"Bach.csv", "Chopin"}); got != "Chords in the embedding space for Bach, Chopin" {
		t.Fatalf("got %q", got)
	}
	many := []Composer{"A", "B", "C", "D"}
	if got := PlotTitle(many); got != "Chords in the embedding space for all composers" {
		t.Fatalf("got %q", got)
	}
}

func TestAnalysisRequest_Normalize(t *testing.T) {
	req := AnalysisRequest{Composers: []Composer{"Bach"}, Selector: "MINOR"}
	if err := req.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != KindChord || req.Selector != SelectMinor || req.Method != "pca" {
		t.Fatalf("defaults not applied: %+v", req)
	}
	if req.Params != DefaultTrainParams() {
		t.Fatalf("params: got %+v", req.Params)
	}

	empty := AnalysisRequest{}
	if err := empty.Normalize(); !errors.Is(err, ErrNoComposers) {
		t.Fatalf("expected error without composers")
	}
	escaping := AnalysisRequest{Composers: []Composer{"Bach"}, HeldOut: []Composer{"../Bach"}}
	if err := escaping.Normalize(); !errors.Is(err, ErrInvalidComposer) {
		t.Fatalf("expected ErrInvalidComposer, got %v", err)
	}
	bad := AnalysisRequest{Composers: []Composer{"Bach"}, Kind: "melody"}
	if err := bad.Normalize(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestNewProjection(t *testing.T) {
	p := NewProjection("pca", []Token{"MAJOR;I", "MINOR;i", "C"}, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	want := []Point{
		{Token: "MAJOR;I", Mode: ModeMajor, X: 1, Y: 2},
		{Token: "MINOR;i", Mode: ModeMinor, X: 3, Y: 4},
		{Token: "C", Mode: ModeUnspecified, X: 5, Y: 6},
	}
	if !reflect.DeepEqual(p.Points, want) {
		t.Fatalf("got %+v, want %+v", p.Points, want)
	}
}
