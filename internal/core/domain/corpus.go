package domain

import (
	"fmt"
	"strings"
)

// CorpusFileExt is appended to composer identifiers that lack it.
const CorpusFileExt = ".csv"

// Token is a single chord or key symbol, optionally mode-prefixed.
type Token = string

// Sentence is one musical section as an ordered token sequence.
type Sentence []Token

// Composer identifies one source file per corpus kind.
type Composer string

// FileName resolves the composer to its corpus file name.
func (c Composer) FileName() string {
	name := strings.TrimSpace(string(c))
	if strings.HasSuffix(name, CorpusFileExt) {
		return name
	}
	return name + CorpusFileExt
}

// Validate rejects names that are empty or could leave the corpus
// directory once joined to it.
func (c Composer) Validate() error {
	name := strings.TrimSpace(string(c))
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidComposer, string(c))
	case strings.ContainsAny(name, `/\:`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q", ErrInvalidComposer, string(c))
	}
	return nil
}

// Name returns the identifier without the corpus file extension.
func (c Composer) Name() string {
	return strings.TrimSuffix(strings.TrimSpace(string(c)), CorpusFileExt)
}

// ParseComposers splits a comma separated list, dropping empty entries.
func ParseComposers(s string) []Composer {
	var out []Composer
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, Composer(part))
	}
	return out
}

// CorpusRecord is one parsed line of a composer file.
type CorpusRecord struct {
	Mode     KeyMode  `json:"mode"`
	Sentence Sentence `json:"sentence"`
	Line     int      `json:"line"`
}

// ReadResult is the outcome of reading one composer file.
type ReadResult struct {
	Composer Composer          `json:"composer"`
	Records  []CorpusRecord    `json:"records"`
	Skipped  []MalformedRecord `json:"skipped,omitempty"`
}

// Corpus is the ordered sentence list handed to an embedding trainer.
type Corpus []Sentence

func (c Corpus) Len() int { return len(c) }

// Counts returns the number of occurrences of every token.
func (c Corpus) Counts() map[Token]int {
	counts := make(map[Token]int)
	for _, s := range c {
		for _, t := range s {
			counts[t]++
		}
	}
	return counts
}

// Vocabulary lists the tokens occurring at least minCount times, in order
// of first appearance.
func (c Corpus) Vocabulary(minCount int) []Token {
	counts := c.Counts()
	seen := make(map[Token]struct{}, len(counts))
	var vocab []Token
	for _, s := range c {
		for _, t := range s {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			if counts[t] >= minCount {
				vocab = append(vocab, t)
			}
		}
	}
	return vocab
}
