package services

import (
	"context"
	"fmt"
	"log"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

// LoadResult is an aggregated corpus plus every line skipped while
// building it.
type LoadResult struct {
	Corpus  domain.Corpus            `json:"sentences"`
	Skipped []domain.MalformedRecord `json:"skipped,omitempty"`
}

// Loader merges per-composer corpus files into a single corpus.
type Loader struct {
	reader ports.CorpusReader
	onSkip func(domain.MalformedRecord)
}

// NewLoader constructs a Loader. Skipped lines are logged unless a
// different sink is installed with WithSkipSink.
func NewLoader(reader ports.CorpusReader) *Loader {
	return &Loader{reader: reader, onSkip: logSkipped}
}

// WithSkipSink replaces the handler called for every malformed line.
func (l *Loader) WithSkipSink(fn func(domain.MalformedRecord)) *Loader {
	if fn == nil {
		fn = func(domain.MalformedRecord) {}
	}
	l.onSkip = fn
	return l
}

func logSkipped(rec domain.MalformedRecord) {
	log.Printf("WARN loader: %v", &domain.MalformedRecordError{Record: rec})
}

// Load dispatches on the corpus kind. The selector only applies to chord
// corpora and dropOneWorders only to key corpora.
func (l *Loader) Load(ctx context.Context, kind domain.CorpusKind, composers []domain.Composer, sel domain.Selector, dropOneWorders bool) (LoadResult, error) {
	switch kind {
	case domain.KindKey:
		return l.LoadKeyCorpus(ctx, composers, dropOneWorders)
	case domain.KindChord:
		return l.LoadChordCorpus(ctx, composers, sel)
	}
	return LoadResult{}, fmt.Errorf("service: %w: %q", domain.ErrInvalidKind, kind)
}

// LoadKeyCorpus concatenates the key sentences of every composer in list
// order. With dropOneWorders set, single-token sentences are left out.
func (l *Loader) LoadKeyCorpus(ctx context.Context, composers []domain.Composer, dropOneWorders bool) (LoadResult, error) {
	out := LoadResult{Corpus: domain.Corpus{}}
	for _, c := range composers {
		res, err := l.read(ctx, domain.KindKey, c, &out)
		if err != nil {
			return LoadResult{}, err
		}
		for _, rec := range res.Records {
			if dropOneWorders && len(rec.Sentence) <= 1 {
				continue
			}
			out.Corpus = append(out.Corpus, rec.Sentence)
		}
	}
	return out, nil
}

// LoadChordCorpus concatenates the chord sentences of every composer in
// list order. SelectBoth keeps every record and prefixes its tokens with
// the record's mode; SelectMajor and SelectMinor keep only the records of
// that mode, unaugmented.
func (l *Loader) LoadChordCorpus(ctx context.Context, composers []domain.Composer, sel domain.Selector) (LoadResult, error) {
	out := LoadResult{Corpus: domain.Corpus{}}
	for _, c := range composers {
		res, err := l.read(ctx, domain.KindChord, c, &out)
		if err != nil {
			return LoadResult{}, err
		}
		for _, rec := range res.Records {
			switch {
			case sel == domain.SelectBoth:
				out.Corpus = append(out.Corpus, domain.Augment(rec.Mode, rec.Sentence))
			case sel.Matches(rec.Mode):
				out.Corpus = append(out.Corpus, rec.Sentence)
			}
		}
	}
	return out, nil
}

func (l *Loader) read(ctx context.Context, kind domain.CorpusKind, c domain.Composer, out *LoadResult) (domain.ReadResult, error) {
	if err := c.Validate(); err != nil {
		return domain.ReadResult{}, fmt.Errorf("service: %w", err)
	}
	res, err := l.reader.Read(ctx, kind, c)
	if err != nil {
		return domain.ReadResult{}, fmt.Errorf("service: failed to read %s corpus for %s: %w", kind, c.Name(), err)
	}
	for _, s := range res.Skipped {
		l.onSkip(s)
	}
	out.Skipped = append(out.Skipped, res.Skipped...)
	return res, nil
}

// ModeCorpora are the unaugmented chord sentences of a composer list, all
// together and split by mode.
type ModeCorpora struct {
	All   domain.Corpus
	Major domain.Corpus
	Minor domain.Corpus
}

// LoadByMode reads every chord file once and sorts its records into the
// three corpora, keeping list and file order in each.
func (l *Loader) LoadByMode(ctx context.Context, composers []domain.Composer) (ModeCorpora, error) {
	var out ModeCorpora
	var sink LoadResult
	for _, c := range composers {
		res, err := l.read(ctx, domain.KindChord, c, &sink)
		if err != nil {
			return ModeCorpora{}, err
		}
		for _, rec := range res.Records {
			out.All = append(out.All, rec.Sentence)
			switch rec.Mode {
			case domain.ModeMajor:
				out.Major = append(out.Major, rec.Sentence)
			case domain.ModeMinor:
				out.Minor = append(out.Minor, rec.Sentence)
			}
		}
	}
	return out, nil
}
