// Package filesystem reads per-composer corpus files from a directory tree.
package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

const (
	defaultRoot     = "data"
	defaultKeyDir   = "key"
	defaultChordDir = "chord"
	defaultBufSize  = 64 * 1024

	tokenSep = ","
	fieldSep = ";"
)

// Options locates the corpus files. Zero values fall back to data/key and
// data/chord.
type Options struct {
	Root     string
	KeyDir   string
	ChordDir string
	BufSize  int
}

// Reader implements ports.CorpusReader on top of the local filesystem.
type Reader struct {
	root     string
	keyDir   string
	chordDir string
	bufSize  int
}

// compile-time interface assertion
var _ ports.CorpusReader = (*Reader)(nil)

func New(opts *Options) *Reader {
	r := &Reader{
		root:     defaultRoot,
		keyDir:   defaultKeyDir,
		chordDir: defaultChordDir,
		bufSize:  defaultBufSize,
	}
	if opts == nil {
		return r
	}
	if opts.Root != "" {
		r.root = opts.Root
	}
	if opts.KeyDir != "" {
		r.keyDir = opts.KeyDir
	}
	if opts.ChordDir != "" {
		r.chordDir = opts.ChordDir
	}
	if opts.BufSize > 0 {
		r.bufSize = opts.BufSize
	}
	return r
}

// Path resolves the file holding the composer's corpus of the given kind.
// The result always lies directly inside the kind directory.
func (r *Reader) Path(kind domain.CorpusKind, composer domain.Composer) (string, error) {
	var dir string
	switch kind {
	case domain.KindKey:
		dir = r.keyDir
	case domain.KindChord:
		dir = r.chordDir
	default:
		return "", fmt.Errorf("filesystem: %w: %q", domain.ErrInvalidKind, kind)
	}
	if err := composer.Validate(); err != nil {
		return "", fmt.Errorf("filesystem: %w", err)
	}
	base := filepath.Join(r.root, dir)
	path := filepath.Join(base, composer.FileName())
	if filepath.Dir(path) != base {
		return "", fmt.Errorf("filesystem: %w: %q resolves outside %s", domain.ErrInvalidComposer, string(composer), base)
	}
	return path, nil
}

func (r *Reader) Read(ctx context.Context, kind domain.CorpusKind, composer domain.Composer) (domain.ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ReadResult{}, err
	}
	path, err := r.Path(kind, composer)
	if err != nil {
		return domain.ReadResult{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ReadResult{}, fmt.Errorf("filesystem: %w: %s", domain.ErrResourceNotFound, path)
		}
		return domain.ReadResult{}, fmt.Errorf("filesystem: open %s: %w", path, err)
	}
	defer f.Close()

	res, err := r.parse(kind, composer, f)
	if err != nil {
		return domain.ReadResult{}, fmt.Errorf("filesystem: read %s: %w", path, err)
	}
	return res, nil
}

func (r *Reader) parse(kind domain.CorpusKind, composer domain.Composer, in io.Reader) (domain.ReadResult, error) {
	res := domain.ReadResult{Composer: composer, Records: []domain.CorpusRecord{}}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, r.bufSize), 16*r.bufSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r")
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}

		var rec domain.CorpusRecord
		var perr error
		if kind == domain.KindKey {
			rec, perr = parseKeyLine(raw)
		} else {
			rec, perr = parseChordLine(raw)
		}
		if perr != nil {
			res.Skipped = append(res.Skipped, domain.MalformedRecord{
				Composer: composer,
				Line:     lineNo,
				Raw:      raw,
				Reason:   perr.Error(),
			})
			continue
		}
		rec.Line = lineNo
		res.Records = append(res.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return domain.ReadResult{}, err
	}
	return res, nil
}

// parseKeyLine reads a comma separated token list with no mode column.
func parseKeyLine(line string) (domain.CorpusRecord, error) {
	s, err := splitTokens(line)
	if err != nil {
		return domain.CorpusRecord{}, err
	}
	return domain.CorpusRecord{Mode: domain.ModeUnspecified, Sentence: s}, nil
}

// parseChordLine reads "<MODE>;<t1>,<t2>,...".
func parseChordLine(line string) (domain.CorpusRecord, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 2 {
		return domain.CorpusRecord{}, fmt.Errorf("expected 2 fields separated by %q, got %d", fieldSep, len(fields))
	}
	mode, err := domain.ParseKeyMode(fields[0])
	if err != nil || mode == domain.ModeUnspecified {
		return domain.CorpusRecord{}, fmt.Errorf("invalid key mode %q", strings.TrimSpace(fields[0]))
	}
	s, err := splitTokens(fields[1])
	if err != nil {
		return domain.CorpusRecord{}, err
	}
	return domain.CorpusRecord{Mode: mode, Sentence: s}, nil
}

// splitTokens drops empty tokens left by stray commas. Only a line with no
// token at all is malformed.
func splitTokens(field string) (domain.Sentence, error) {
	parts := strings.Split(field, tokenSep)
	s := make(domain.Sentence, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			s = append(s, p)
		}
	}
	if len(s) == 0 {
		return nil, errors.New("no tokens")
	}
	return s, nil
}
