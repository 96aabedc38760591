// Command chordvec trains chord embeddings on a composer corpus, reduces
// them to two dimensions and plots the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/elianzuoni/ml-project2/internal/adapters/filesystem"
	"github.com/elianzuoni/ml-project2/internal/adapters/ollama"
	"github.com/elianzuoni/ml-project2/internal/adapters/plot"
	"github.com/elianzuoni/ml-project2/internal/adapters/reduce"
	"github.com/elianzuoni/ml-project2/internal/adapters/sqlite"
	"github.com/elianzuoni/ml-project2/internal/adapters/word2vec"
	"github.com/elianzuoni/ml-project2/internal/config"
	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
	"github.com/elianzuoni/ml-project2/internal/core/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	root           string
	backend        string
	kind           string
	composers      string
	heldOut        string
	mode           string
	dropOneWorders bool
	params         domain.TrainParams
	method         string
	out            string
	labels         bool
	vectorsOut     string
	persist        bool
	byMode         bool
}

func parseFlags(args []string, cfg config.Config, stderr io.Writer) (options, error) {
	def := domain.DefaultTrainParams()
	var o options
	fs := flag.NewFlagSet("chordvec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.root, "root", cfg.CorpusRoot, "corpus root holding the key/ and chord/ directories")
	fs.StringVar(&o.backend, "backend", cfg.EmbeddingBackend, "embedding backend: word2vec or ollama")
	fs.StringVar(&o.kind, "kind", string(domain.KindChord), "corpus kind: chord or key")
	fs.StringVar(&o.composers, "composers", "", "comma-separated composers (file names with or without .csv)")
	fs.StringVar(&o.heldOut, "held-out", "", "comma-separated composers kept out of training")
	fs.StringVar(&o.mode, "mode", string(domain.SelectBoth), "key mode of chord sentences: both, major or minor")
	fs.BoolVar(&o.dropOneWorders, "drop-one-worders", false, "drop key sentences with a single token")
	fs.IntVar(&o.params.MinCount, "min-count", def.MinCount, "ignore tokens rarer than this")
	fs.IntVar(&o.params.Size, "size", def.Size, "embedding dimensionality")
	fs.IntVar(&o.params.Window, "window", def.Window, "context window")
	fs.BoolVar(&o.params.SkipGram, "sg", def.SkipGram, "use skip-gram instead of CBOW")
	fs.IntVar(&o.params.Epochs, "epochs", def.Epochs, "training epochs")
	fs.Int64Var(&o.params.Seed, "seed", def.Seed, "random seed")
	fs.StringVar(&o.method, "method", reduce.MethodPCA, "reduction method: "+strings.Join(reduce.Methods(), ", "))
	fs.StringVar(&o.out, "out", "", "plot file (.png, .svg, .pdf); empty skips plotting")
	fs.BoolVar(&o.labels, "labels", false, "label every point with its chord")
	fs.StringVar(&o.vectorsOut, "vectors-out", "", "write vectors in word2vec text format")
	fs.BoolVar(&o.persist, "persist", false, "record the run in the sqlite database at DB_PATH")
	fs.BoolVar(&o.byMode, "by-mode", false, "train separate all/major/minor models and only write their vectors")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(o.composers) == "" {
		return options{}, fmt.Errorf("chordvec: -composers is required")
	}
	o.params.Negative = def.Negative
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	var trainer ports.EmbeddingTrainer
	switch strings.ToLower(opts.backend) {
	case config.BackendWord2Vec:
		trainer = word2vec.NewTrainer()
	case config.BackendOllama:
		trainer = ollama.NewClient(cfg.OllamaHost, cfg.OllamaEmbedModel)
	default:
		fmt.Fprintf(stderr, "chordvec: unknown backend %q\n", opts.backend)
		return 2
	}

	var repo ports.RunRepository
	if opts.persist {
		db, err := sqlite.NewAdapter(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(stderr, "chordvec: %v\n", err)
			return 1
		}
		defer db.Close()
		repo = db
	}

	reader := filesystem.New(&filesystem.Options{Root: opts.root})
	svc := services.NewOrchestrator(services.NewLoader(reader), trainer, reduce.New, plot.NewScatter(), repo)

	if opts.byMode {
		if err := trainByMode(ctx, svc, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "chordvec: %v\n", err)
			return 1
		}
		return 0
	}

	req := domain.AnalysisRequest{
		Kind:           domain.CorpusKind(opts.kind),
		Composers:      domain.ParseComposers(opts.composers),
		HeldOut:        domain.ParseComposers(opts.heldOut),
		Selector:       domain.Selector(opts.mode),
		DropOneWorders: opts.dropOneWorders,
		Params:         opts.params,
		Method:         opts.method,
		PlotPath:       opts.out,
		ShowLabels:     opts.labels,
	}

	var res services.Result
	if opts.persist {
		var stored domain.AnalysisRun
		stored, res, err = svc.Record(ctx, req)
		if stored.ID != "" {
			fmt.Fprintf(stdout, "run %s: %s\n", stored.ID, stored.Status)
		}
	} else {
		res, err = svc.Analyze(ctx, req)
	}
	if err != nil {
		fmt.Fprintf(stderr, "chordvec: %v\n", err)
		return 1
	}

	report(stdout, res, opts)
	if opts.vectorsOut != "" {
		if err := writeVectors(opts.vectorsOut, res.Embedding); err != nil {
			fmt.Fprintf(stderr, "chordvec: %v\n", err)
			return 1
		}
	}
	return 0
}

func report(w io.Writer, res services.Result, opts options) {
	fmt.Fprintf(w, "train composers: %s (%d sentences)\n", joinNames(res.Split.TrainComposers), len(res.Split.Train.Corpus))
	if len(res.Split.TestComposers) > 0 {
		fmt.Fprintf(w, "test composers: %s (%d sentences)\n", joinNames(res.Split.TestComposers), len(res.Split.Test.Corpus))
	}
	if n := res.Split.Skipped(); n > 0 {
		fmt.Fprintf(w, "skipped %d malformed lines\n", n)
	}
	fmt.Fprintf(w, "vocabulary: %d tokens, %d dimensions\n", len(res.Embedding.Tokens), res.Embedding.Dim())
	if opts.out != "" {
		fmt.Fprintf(w, "plot: %s\n", opts.out)
	}
}

func trainByMode(ctx context.Context, svc *services.Orchestrator, opts options, stdout io.Writer) error {
	kind, err := domain.ParseCorpusKind(opts.kind)
	if err != nil {
		return err
	}
	if kind != domain.KindChord {
		return fmt.Errorf("-by-mode needs the chord corpus, got %s", kind)
	}
	models, err := svc.TrainByMode(ctx, domain.ParseComposers(opts.composers), opts.params)
	if err != nil {
		return err
	}
	for _, m := range []struct {
		name string
		emb  domain.Embedding
	}{
		{"all", models.All},
		{"major", models.Major},
		{"minor", models.Minor},
	} {
		fmt.Fprintf(stdout, "%s: %d tokens\n", m.name, len(m.emb.Tokens))
		if opts.vectorsOut == "" || len(m.emb.Tokens) == 0 {
			continue
		}
		if err := writeVectors(suffixed(opts.vectorsOut, m.name), m.emb); err != nil {
			return err
		}
	}
	return nil
}

// suffixed turns vectors.txt into vectors_major.txt.
func suffixed(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}

func writeVectors(path string, emb domain.Embedding) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := word2vec.WriteText(f, emb); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d vectors to %s", len(emb.Tokens), path)
	return nil
}

func joinNames(cs []domain.Composer) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name()
	}
	return strings.Join(names, ", ")
}
