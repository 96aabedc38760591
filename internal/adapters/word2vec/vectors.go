package word2vec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
)

// WriteText writes emb in the word2vec text format: a "<count> <dim>"
// header followed by one "<token> v1 v2 ..." line per token.
func WriteText(w io.Writer, emb domain.Embedding) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(emb.Tokens), emb.Dim()); err != nil {
		return fmt.Errorf("word2vec: write header: %w", err)
	}
	for i, tok := range emb.Tokens {
		if strings.ContainsAny(tok, " \t\n") {
			return fmt.Errorf("word2vec: token %q contains whitespace", tok)
		}
		bw.WriteString(tok)
		for _, v := range emb.Vectors[i] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("word2vec: write vectors: %w", err)
	}
	return nil
}

// ReadText parses the format produced by WriteText.
func ReadText(r io.Reader) (domain.Embedding, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return domain.Embedding{}, fmt.Errorf("word2vec: read header: %w", err)
		}
		return domain.Embedding{}, fmt.Errorf("word2vec: missing header")
	}
	var count, dim int
	if _, err := fmt.Sscanf(sc.Text(), "%d %d", &count, &dim); err != nil {
		return domain.Embedding{}, fmt.Errorf("word2vec: bad header %q: %w", sc.Text(), err)
	}

	emb := domain.Embedding{
		Tokens:  make([]domain.Token, 0, count),
		Vectors: make([][]float64, 0, count),
	}
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dim+1 {
			return domain.Embedding{}, fmt.Errorf("word2vec: line %d: expected %d values, got %d", line, dim, len(fields)-1)
		}
		vec := make([]float64, dim)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return domain.Embedding{}, fmt.Errorf("word2vec: line %d: %w", line, err)
			}
			vec[i] = v
		}
		emb.Tokens = append(emb.Tokens, fields[0])
		emb.Vectors = append(emb.Vectors, vec)
	}
	if err := sc.Err(); err != nil {
		return domain.Embedding{}, fmt.Errorf("word2vec: read vectors: %w", err)
	}
	if len(emb.Tokens) != count {
		return domain.Embedding{}, fmt.Errorf("word2vec: header announces %d tokens, found %d", count, len(emb.Tokens))
	}
	return emb, nil
}
