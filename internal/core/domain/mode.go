package domain

import (
	"fmt"
	"strings"
)

// KeyMode is the tonal context of a passage.
type KeyMode string

const (
	ModeMajor       KeyMode = "MAJOR"
	ModeMinor       KeyMode = "MINOR"
	ModeUnspecified KeyMode = "UNSPEC"
)

// ParseKeyMode upper-cases s before matching. UNSPEC and UNSPECIFIED are
// both accepted for the unspecified mode.
func ParseKeyMode(s string) (KeyMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MAJOR":
		return ModeMajor, nil
	case "MINOR":
		return ModeMinor, nil
	case "UNSPEC", "UNSPECIFIED":
		return ModeUnspecified, nil
	}
	return "", fmt.Errorf("domain: unknown key mode %q", s)
}

// Selector chooses which records of a chord corpus are aggregated.
type Selector string

const (
	SelectBoth  Selector = "both"
	SelectMajor Selector = "major"
	SelectMinor Selector = "minor"
)

// ParseSelector accepts "both", "major" or "minor" in any case. An empty
// string selects both modes.
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return SelectBoth, nil
	case "major":
		return SelectMajor, nil
	case "minor":
		return SelectMinor, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSelector, s)
}

// Matches reports whether a record in mode m is kept by the selector.
// The "both" selector keeps every record.
func (s Selector) Matches(m KeyMode) bool {
	if s == SelectBoth {
		return true
	}
	return strings.ToUpper(string(s)) == string(m)
}

// CorpusKind names one of the two corpora available per composer.
type CorpusKind string

const (
	KindKey   CorpusKind = "key"
	KindChord CorpusKind = "chord"
)

func ParseCorpusKind(s string) (CorpusKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "key":
		return KindKey, nil
	case "chord":
		return KindChord, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}
