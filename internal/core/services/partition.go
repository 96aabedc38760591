package services

import (
	"context"
	"fmt"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// PartitionRequest splits Composers into a training list and the HeldOut
// test list.
type PartitionRequest struct {
	Kind           domain.CorpusKind
	Composers      []domain.Composer
	HeldOut        []domain.Composer
	Selector       domain.Selector
	DropOneWorders bool
}

// Split holds the two aggregated corpora of a partition.
type Split struct {
	TrainComposers []domain.Composer
	TestComposers  []domain.Composer
	Train          LoadResult
	Test           LoadResult
}

// Empty reports whether either side ended up without sentences.
func (s Split) Empty() bool {
	return len(s.Train.Corpus) == 0 || len(s.Test.Corpus) == 0
}

// Skipped returns the number of malformed lines seen on both sides.
func (s Split) Skipped() int {
	return len(s.Train.Skipped) + len(s.Test.Skipped)
}

// SplitComposers removes the held-out composers from the full list. Names
// are compared exactly, after resolving both to their file names. A
// held-out composer missing from the full list is an error.
func SplitComposers(all, heldOut []domain.Composer) (train, test []domain.Composer, err error) {
	known := make(map[string]struct{}, len(all))
	for _, c := range all {
		known[c.FileName()] = struct{}{}
	}
	held := make(map[string]struct{}, len(heldOut))
	for _, c := range heldOut {
		if _, ok := known[c.FileName()]; !ok {
			return nil, nil, fmt.Errorf("service: %w: %q", domain.ErrUnknownComposer, c)
		}
		held[c.FileName()] = struct{}{}
	}

	train = make([]domain.Composer, 0, len(all))
	for _, c := range all {
		if _, ok := held[c.FileName()]; ok {
			continue
		}
		train = append(train, c)
	}
	test = append([]domain.Composer{}, heldOut...)
	return train, test, nil
}

// Partition builds the train and test corpora with the same selector.
func (l *Loader) Partition(ctx context.Context, req PartitionRequest) (Split, error) {
	train, test, err := SplitComposers(req.Composers, req.HeldOut)
	if err != nil {
		return Split{}, err
	}

	split := Split{TrainComposers: train, TestComposers: test}
	split.Train, err = l.Load(ctx, req.Kind, train, req.Selector, req.DropOneWorders)
	if err != nil {
		return Split{}, fmt.Errorf("service: failed to load train split: %w", err)
	}
	split.Test, err = l.Load(ctx, req.Kind, test, req.Selector, req.DropOneWorders)
	if err != nil {
		return Split{}, fmt.Errorf("service: failed to load test split: %w", err)
	}
	return split, nil
}
