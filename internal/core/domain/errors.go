package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("domain: not found")
	ErrResourceNotFound = errors.New("domain: corpus file not found")
	ErrUnknownComposer  = errors.New("domain: held-out composer not in composer list")
	ErrUnknownDegree    = errors.New("domain: unknown root degree")
	ErrNotEnoughTokens  = errors.New("domain: not enough tokens to reduce")
	ErrInvalidSelector  = errors.New("domain: invalid key mode selector")
	ErrInvalidKind      = errors.New("domain: invalid corpus kind")
	ErrEmptyCorpus      = errors.New("domain: empty corpus")
	ErrNoComposers      = errors.New("domain: at least one composer is required")
	ErrInvalidComposer  = errors.New("domain: invalid composer name")
)

// MalformedRecord is a corpus line that could not be parsed. Readers skip
// such lines and report them so the skip policy can be audited.
type MalformedRecord struct {
	Composer Composer `json:"composer"`
	Line     int      `json:"line"`
	Raw      string   `json:"raw"`
	Reason   string   `json:"reason"`
}

// MalformedRecordError wraps a MalformedRecord as an error value.
type MalformedRecordError struct {
	Record MalformedRecord
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("domain: malformed record %s:%d: %s", e.Record.Composer.FileName(), e.Record.Line, e.Record.Reason)
}
