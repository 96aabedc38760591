// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendWord2Vec = "word2vec"
	BackendOllama   = "ollama"

	DriverSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	CorpusRoot       string
	DBPath           string
	StorageDriver    string
	HTTPAddr         string
	PlotDir          string
	EmbeddingBackend string
	OllamaHost       string
	OllamaEmbedModel string
	WorkerCount      int
	WorkerQueue      int
}

// Load reads .env files into the environment when they exist and then
// builds a Config from it. Variables already set win over the files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("WARN config: no .env file found, using system environment variables")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		CorpusRoot:       envString("CORPUS_ROOT", "data"),
		DBPath:           envString("DB_PATH", "chordvec.db"),
		StorageDriver:    strings.ToLower(envString("STORAGE_DRIVER", DriverSQLite)),
		HTTPAddr:         envString("HTTP_ADDR", ":8080"),
		PlotDir:          envString("PLOT_DIR", "plots"),
		EmbeddingBackend: strings.ToLower(envString("EMBEDDING_BACKEND", BackendWord2Vec)),
		OllamaHost:       os.Getenv("OLLAMA_HOST"),
		OllamaEmbedModel: os.Getenv("OLLAMA_EMBED_MODEL"),
	}

	var err error
	if cfg.WorkerCount, err = envPositiveInt("WORKER_COUNT", 2); err != nil {
		return Config{}, err
	}
	if cfg.WorkerQueue, err = envPositiveInt("WORKER_QUEUE", 100); err != nil {
		return Config{}, err
	}

	switch cfg.EmbeddingBackend {
	case BackendWord2Vec, BackendOllama:
	default:
		return Config{}, fmt.Errorf("%w: EMBEDDING_BACKEND=%q", ErrInvalidConfig, cfg.EmbeddingBackend)
	}
	if cfg.StorageDriver != DriverSQLite {
		return Config{}, fmt.Errorf("%w: STORAGE_DRIVER=%q", ErrInvalidConfig, cfg.StorageDriver)
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envPositiveInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s=%q must be a positive integer", ErrInvalidConfig, key, raw)
	}
	return n, nil
}
