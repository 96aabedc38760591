package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elianzuoni/ml-project2/internal/adapters/filesystem"
	"github.com/elianzuoni/ml-project2/internal/adapters/ollama"
	"github.com/elianzuoni/ml-project2/internal/adapters/plot"
	"github.com/elianzuoni/ml-project2/internal/adapters/reduce"
	"github.com/elianzuoni/ml-project2/internal/adapters/rest"
	"github.com/elianzuoni/ml-project2/internal/adapters/sqlite"
	"github.com/elianzuoni/ml-project2/internal/adapters/word2vec"
	"github.com/elianzuoni/ml-project2/internal/config"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
	"github.com/elianzuoni/ml-project2/internal/core/services"
	"github.com/elianzuoni/ml-project2/internal/worker"
)

func main() {
	// 1. Configuration (.env file, then environment variables)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 2. Initialize "Driven" Adapters (The Tools)
	// -- Database Adapter
	var repo ports.RunRepository
	var repoCloser func() error

	switch cfg.StorageDriver {
	case config.DriverSQLite:
		dbAdapter, err := sqlite.NewAdapter(cfg.DBPath)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize database: %v", err)
		}
		repo = dbAdapter
		repoCloser = dbAdapter.Close
	default:
		log.Fatalf("Unknown storage driver: %s", cfg.StorageDriver)
	}
	defer repoCloser()

	// -- Corpus files
	reader := filesystem.New(&filesystem.Options{Root: cfg.CorpusRoot})

	// -- Embedding backend
	var trainer ports.EmbeddingTrainer
	switch cfg.EmbeddingBackend {
	case config.BackendOllama:
		trainer = ollama.NewClient(cfg.OllamaHost, cfg.OllamaEmbedModel)
	default:
		trainer = word2vec.NewTrainer()
	}

	// 3. Initialize Core Logic (The Driver)
	svc := services.NewOrchestrator(services.NewLoader(reader), trainer, reduce.New, plot.NewScatter(), repo)

	// 4. Initialize "Driving" Adapter (The Interface)
	pool := worker.NewPool(svc, cfg.WorkerQueue)
	pool.Start(cfg.WorkerCount)
	defer pool.Stop()

	handler := rest.NewHandler(svc, pool).WithPlotDir(cfg.PlotDir)

	// 5. Start the Server
	log.Printf("chord embeddings API listening on %s (corpora in %s, backend %s)", cfg.HTTPAddr, cfg.CorpusRoot, cfg.EmbeddingBackend)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
